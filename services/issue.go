package services

import (
	"context"
	"math"

	"projectdesk/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func amountChanged(a, b float64) bool {
	return math.Round(a*100) != math.Round(b*100)
}

// SaveIssue persists issue and, when its amount differs from the stored one,
// appends one amount_updated activity in the same transaction. The stored row
// is re-read under a row lock so concurrent updates compare against committed
// state.
func SaveIssue(ctx context.Context, db *gorm.DB, issue *model.Issue, actorID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Issue
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "amount").First(&current, issue.ID).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(issue).Error; err != nil {
			return err
		}
		if !amountChanged(current.Amount, issue.Amount) {
			return nil
		}
		activity := model.Activity{
			UserID:      actorID,
			SubjectType: model.KindIssue.Tag(),
			SubjectID:   issue.ID,
			Type:        model.ActivityAmountUpdated,
			Changes: map[string]interface{}{
				"old_amount": current.Amount,
				"new_amount": issue.Amount,
			},
		}
		return tx.Create(&activity).Error
	})
}

// IssueActivities returns the audit trail of an issue, newest first.
func IssueActivities(ctx context.Context, db *gorm.DB, issueID uint) ([]model.Activity, error) {
	activities := []model.Activity{}
	err := db.WithContext(ctx).
		Preload("User").
		Scopes(MorphTo("subject", model.KindIssue, issueID)).
		Order("created_at DESC").Order("id DESC").
		Find(&activities).Error
	return activities, err
}

func DeleteIssue(ctx context.Context, db *gorm.DB, issueID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return purgeIssues(tx, []uint{issueID})
	})
}
