package services

import (
	"context"
	"testing"

	"projectdesk/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTotals(t *testing.T) {
	totals := Totals([]model.Task{
		{ID: 1, Title: "a", Budget: ptr(200.0), AmountUsed: ptr(50.0)},
		{ID: 2, Title: "b", Budget: ptr(100.0)},
		{ID: 3, Title: "c"},
	})

	require.Len(t, totals.Tasks, 3)
	assert.Equal(t, 150.0, totals.Tasks[0].Leftover)
	assert.Equal(t, 100.0, totals.Tasks[1].Leftover)
	assert.Zero(t, totals.Tasks[2].Leftover)
	assert.Equal(t, 300.0, totals.Budget)
	assert.Equal(t, 50.0, totals.AmountUsed)
	assert.Equal(t, 250.0, totals.Leftover)

	assert.NotNil(t, Totals(nil).Tasks)
}

func TestPurgeProject(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pm := seedUser(t, db, "pm", model.RoleProjectManager)
	tm := seedUser(t, db, "tm", model.RoleTeamMember)
	p := seedProject(t, db, pm, "P1")
	keep := seedProject(t, db, pm, "P2")
	task := seedTask(t, db, p, tm)
	kept := seedTask(t, db, keep, tm)

	comment := model.Comment{Content: "hi", UserID: tm.ID, TaskID: task.ID}
	require.NoError(t, db.Create(&comment).Error)
	files := []model.File{
		{UserID: tm.ID, FileableType: model.KindTask.Tag(), FileableID: task.ID, OriginalFilename: "a.txt", StoredFilename: "a", Path: "tasks/a", Disk: "local"},
		{UserID: tm.ID, FileableType: "Comment", FileableID: comment.ID, OriginalFilename: "b.txt", StoredFilename: "b", Path: "tasks/b", Disk: "local"},
		{UserID: pm.ID, FileableType: model.KindProject.Tag(), FileableID: p.ID, OriginalFilename: "c.txt", StoredFilename: "c", Path: "projects/c", Disk: "local"},
		{UserID: tm.ID, FileableType: model.KindTask.Tag(), FileableID: kept.ID, OriginalFilename: "d.txt", StoredFilename: "d", Path: "tasks/d", Disk: "local"},
	}
	require.NoError(t, db.Create(&files).Error)
	issue := model.Issue{Title: "i", ProjectID: p.ID, TaskID: &task.ID, ReportedBy: tm.ID, Status: model.IssueStatusOpen, Type: model.IssueTypeTask}
	require.NoError(t, db.Create(&issue).Error)
	issue.Amount = 5
	require.NoError(t, SaveIssue(ctx, db, &issue, tm.ID))

	var removed []model.File
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = PurgeProject(tx, p.ID)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	count := func(m interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, count(&model.Project{}))
	assert.EqualValues(t, 1, count(&model.Task{}))
	assert.EqualValues(t, 0, count(&model.Comment{}))
	assert.EqualValues(t, 1, count(&model.File{}))
	assert.EqualValues(t, 0, count(&model.Issue{}))
	assert.EqualValues(t, 0, count(&model.Activity{}))
}
