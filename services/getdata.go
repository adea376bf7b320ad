package services

import (
	"context"
	"errors"

	"projectdesk/apperror"
	"projectdesk/model"

	"gorm.io/gorm"
)

func GetUserdata(ctx context.Context, db *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Missing("User")
		}
		return nil, err
	}
	return &user, nil
}

func GetProjectData(ctx context.Context, db *gorm.DB, projectID uint) (*model.Project, error) {
	var project model.Project
	if err := db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Missing("Project")
		}
		return nil, err
	}
	return &project, nil
}

// GetTaskData loads a task together with its project.
func GetTaskData(ctx context.Context, db *gorm.DB, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := db.WithContext(ctx).Preload("Project").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Missing("Task")
		}
		return nil, err
	}
	return &task, nil
}

// IsProjectMember reports whether userID has at least one task assigned in the project.
func IsProjectMember(ctx context.Context, db *gorm.DB, projectID, userID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND assigned_to = ?", projectID, userID).
		Count(&n).Error
	return n > 0, err
}
