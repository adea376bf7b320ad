package services

import (
	"context"
	"testing"

	"projectdesk/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSaveIssueAppendsActivityOnlyOnAmountChange(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pm := seedUser(t, db, "pm", model.RoleProjectManager)
	p := seedProject(t, db, pm, "P1")

	issue := &model.Issue{Title: "cost", ProjectID: p.ID, ReportedBy: pm.ID, Status: model.IssueStatusOpen, Type: model.IssueTypeProject, Amount: 10}
	require.NoError(t, db.Create(issue).Error)

	issue.Title = "renamed"
	require.NoError(t, SaveIssue(ctx, db, issue, pm.ID))
	activities, err := IssueActivities(ctx, db, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, activities, "no activity for other field changes")

	issue.Amount = 10.001
	require.NoError(t, SaveIssue(ctx, db, issue, pm.ID))
	activities, err = IssueActivities(ctx, db, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, activities, "sub-cent difference is not a change")

	issue.Amount = 25
	require.NoError(t, SaveIssue(ctx, db, issue, pm.ID))
	activities, err = IssueActivities(ctx, db, issue.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	a := activities[0]
	assert.Equal(t, model.ActivityAmountUpdated, a.Type)
	assert.Equal(t, pm.ID, a.UserID)
	assert.Equal(t, model.KindIssue.Tag(), a.SubjectType)
	assert.InDelta(t, 10, a.Changes["old_amount"], 0.01)
	assert.EqualValues(t, 25, a.Changes["new_amount"])

	require.NoError(t, DeleteIssue(ctx, db, issue.ID))
	var n int64
	require.NoError(t, db.Model(&model.Activity{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSaveIssueComparesAgainstStoredAmount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pm := seedUser(t, db, "pm", model.RoleProjectManager)
	p := seedProject(t, db, pm, "P1")

	issue := &model.Issue{Title: "cost", ProjectID: p.ID, ReportedBy: pm.ID, Status: model.IssueStatusOpen, Type: model.IssueTypeProject, Amount: 10}
	require.NoError(t, db.Create(issue).Error)

	// Both copies were loaded while the amount was still 10.
	var first, second model.Issue
	require.NoError(t, db.First(&first, issue.ID).Error)
	require.NoError(t, db.First(&second, issue.ID).Error)
	first.Amount = 20
	second.Amount = 20

	require.NoError(t, SaveIssue(ctx, db, &first, pm.ID))
	require.NoError(t, SaveIssue(ctx, db, &second, pm.ID))

	activities, err := IssueActivities(ctx, db, issue.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1, "the second save changed nothing")
	assert.EqualValues(t, 10, activities[0].Changes["old_amount"])
	assert.EqualValues(t, 20, activities[0].Changes["new_amount"])
}

func TestSaveIssueMissingRow(t *testing.T) {
	db := openTestDB(t)
	err := SaveIssue(context.Background(), db, &model.Issue{ID: 999, Title: "x", Type: model.IssueTypeProject}, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
