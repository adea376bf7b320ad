package services

import (
	"context"
	"fmt"

	"projectdesk/model"

	"gorm.io/gorm"
)

// lookups resolves a polymorphic kind to the table that holds its rows.
var lookups = map[model.Kind]func() interface{}{
	model.KindUser:    func() interface{} { return &model.User{} },
	model.KindProject: func() interface{} { return &model.Project{} },
	model.KindTask:    func() interface{} { return &model.Task{} },
	model.KindComment: func() interface{} { return &model.Comment{} },
	model.KindIssue:   func() interface{} { return &model.Issue{} },
}

// MorphExists reports whether (tag, id) points at an existing row. Any of a
// kind's spellings is accepted.
func MorphExists(ctx context.Context, db *gorm.DB, tag string, id uint) (bool, error) {
	kind, ok := model.KindOf(tag)
	if !ok {
		return false, fmt.Errorf("unknown morph type %q", tag)
	}
	var n int64
	if err := db.WithContext(ctx).Model(lookups[kind]()).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// MorphTo is the canonical (type, id) where-clause for rows attached to kind/id,
// matching legacy spellings too.
func MorphTo(column string, kind model.Kind, id uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+"_id = ? AND "+column+"_type IN ?", id, kind.Tags())
	}
}
