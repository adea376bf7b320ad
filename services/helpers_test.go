package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"projectdesk/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.test", Password: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProject(t *testing.T, db *gorm.DB, owner *model.User, code string) *model.Project {
	t.Helper()
	p := &model.Project{ProjectName: code, ProjectCode: code, UserID: owner.ID, Status: model.ProjectStatusToDo}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedTask(t *testing.T, db *gorm.DB, p *model.Project, assignee *model.User) *model.Task {
	t.Helper()
	task := &model.Task{Title: "task", ProjectID: p.ID, Status: model.TaskStatusPending, Priority: model.PriorityMedium}
	if assignee != nil {
		task.AssignedTo = &assignee.ID
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func ptr[T any](v T) *T { return &v }
