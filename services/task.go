package services

import (
	"fmt"
	"time"

	"projectdesk/model"

	"gorm.io/gorm"
)

// ApplyStatus moves t to status and keeps the time bookkeeping in step:
// in_progress stamps start_time once and clears end_time, completed stamps
// end_time and time_spent, pending clears all three. It reports whether the
// task has just entered completed.
func ApplyStatus(t *model.Task, status string, now time.Time) bool {
	prev, _ := model.NormalizeTaskStatus(t.Status)
	status, _ = model.NormalizeTaskStatus(status)
	if prev == status {
		t.Status = status
		return false
	}
	t.Status = status

	switch status {
	case model.TaskStatusInProgress:
		if t.StartTime == nil {
			start := now
			t.StartTime = &start
		}
		t.EndTime = nil
		t.TimeSpent = nil
	case model.TaskStatusCompleted:
		end := now
		t.EndTime = &end
		var spent int64
		if t.StartTime != nil && end.After(*t.StartTime) {
			spent = int64(end.Sub(*t.StartTime) / time.Second)
		}
		t.TimeSpent = &spent
	case model.TaskStatusPending:
		t.StartTime = nil
		t.EndTime = nil
		t.TimeSpent = nil
	}
	return status == model.TaskStatusCompleted
}

func TaskCompletedMessage(t *model.Task) string {
	return fmt.Sprintf("Task '%s' has been completed", t.Title)
}

func TaskAssignedMessage(t *model.Task) string {
	return fmt.Sprintf("You have been assigned to task '%s'", t.Title)
}

func NewCommentMessage(t *model.Task) string {
	return fmt.Sprintf("New comment on task '%s'", t.Title)
}

func TaskPayload(t *model.Task) map[string]interface{} {
	return map[string]interface{}{
		"task_id":    t.ID,
		"project_id": t.ProjectID,
	}
}

// CommentRecipients is {assignee, project manager} without the commenter.
// task.Project must be loaded.
func CommentRecipients(task *model.Task, commenterID uint) []uint {
	var out []uint
	seen := map[uint]bool{commenterID: true}
	if task.AssignedTo != nil && !seen[*task.AssignedTo] {
		seen[*task.AssignedTo] = true
		out = append(out, *task.AssignedTo)
	}
	if task.Project != nil && !seen[task.Project.UserID] {
		out = append(out, task.Project.UserID)
	}
	return out
}

// PurgeTasks deletes tasks with their comments, issues, activities and the
// file rows attached to the tasks or their comments. It returns the deleted
// file rows so the caller can remove blobs once tx commits.
func PurgeTasks(tx *gorm.DB, taskIDs []uint) ([]model.File, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var commentIDs []uint
	if err := tx.Model(&model.Comment{}).Where("task_id IN ?", taskIDs).Pluck("id", &commentIDs).Error; err != nil {
		return nil, err
	}

	var files []model.File
	q := tx.Where("fileable_type IN ? AND fileable_id IN ?", model.KindTask.Tags(), taskIDs)
	if len(commentIDs) > 0 {
		q = q.Or("fileable_type IN ? AND fileable_id IN ?", model.KindComment.Tags(), commentIDs)
	}
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	if err := deleteFileRows(tx, files); err != nil {
		return nil, err
	}

	var issueIDs []uint
	if err := tx.Model(&model.Issue{}).Where("task_id IN ?", taskIDs).Pluck("id", &issueIDs).Error; err != nil {
		return nil, err
	}
	if err := purgeIssues(tx, issueIDs); err != nil {
		return nil, err
	}

	if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.Comment{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", taskIDs).Delete(&model.Task{}).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func purgeIssues(tx *gorm.DB, issueIDs []uint) error {
	if len(issueIDs) == 0 {
		return nil
	}
	if err := tx.Where("subject_type IN ? AND subject_id IN ?", model.KindIssue.Tags(), issueIDs).
		Delete(&model.Activity{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", issueIDs).Delete(&model.Issue{}).Error
}

func deleteFileRows(tx *gorm.DB, files []model.File) error {
	if len(files) == 0 {
		return nil
	}
	ids := make([]uint, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return tx.Where("id IN ?", ids).Delete(&model.File{}).Error
}
