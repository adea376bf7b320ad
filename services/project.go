package services

import (
	"projectdesk/model"

	"gorm.io/gorm"
)

type TaskTotal struct {
	TaskID     uint    `json:"task_id"`
	Title      string  `json:"title"`
	Budget     float64 `json:"budget"`
	AmountUsed float64 `json:"amount_used"`
	Leftover   float64 `json:"leftover"`
}

type ProjectTotals struct {
	Tasks      []TaskTotal `json:"tasks"`
	Budget     float64     `json:"budget"`
	AmountUsed float64     `json:"amount_used"`
	Leftover   float64     `json:"leftover"`
}

// Totals sums budget and spend per task. Missing values count as 0.
func Totals(tasks []model.Task) ProjectTotals {
	out := ProjectTotals{Tasks: make([]TaskTotal, 0, len(tasks))}
	for _, t := range tasks {
		row := TaskTotal{TaskID: t.ID, Title: t.Title}
		if t.Budget != nil {
			row.Budget = *t.Budget
		}
		if t.AmountUsed != nil {
			row.AmountUsed = *t.AmountUsed
		}
		row.Leftover = row.Budget - row.AmountUsed
		out.Tasks = append(out.Tasks, row)
		out.Budget += row.Budget
		out.AmountUsed += row.AmountUsed
	}
	out.Leftover = out.Budget - out.AmountUsed
	return out
}

// PurgeProject deletes a project and everything hanging off it. The returned
// file rows still have blobs on disk.
func PurgeProject(tx *gorm.DB, projectID uint) ([]model.File, error) {
	var taskIDs []uint
	if err := tx.Model(&model.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
		return nil, err
	}
	files, err := PurgeTasks(tx, taskIDs)
	if err != nil {
		return nil, err
	}

	var own []model.File
	if err := tx.Scopes(MorphTo("fileable", model.KindProject, projectID)).Find(&own).Error; err != nil {
		return nil, err
	}
	if err := deleteFileRows(tx, own); err != nil {
		return nil, err
	}
	files = append(files, own...)

	var issueIDs []uint
	if err := tx.Model(&model.Issue{}).Where("project_id = ?", projectID).Pluck("id", &issueIDs).Error; err != nil {
		return nil, err
	}
	if err := purgeIssues(tx, issueIDs); err != nil {
		return nil, err
	}
	if err := tx.Delete(&model.Project{}, projectID).Error; err != nil {
		return nil, err
	}
	return files, nil
}
