package policy

import (
	"fmt"
	"testing"

	"projectdesk/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func uid(v uint) *uint { return &v }

var (
	pm    = Principal{ID: 1, Role: model.RoleProjectManager}
	other = Principal{ID: 2, Role: model.RoleProjectManager}
	tm    = Principal{ID: 3, Role: model.RoleTeamMember}
	guest = Principal{ID: 4, Role: "auditor"}
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		who    Principal
		target Target
		want   bool
	}{
		{"pm creates project", ProjectCreate, pm, Target{}, true},
		{"tm cannot create project", ProjectCreate, tm, Target{}, false},
		{"owner updates project", ProjectUpdate, pm, Target{OwnerID: uid(1)}, true},
		{"other pm cannot update", ProjectUpdate, other, Target{OwnerID: uid(1)}, false},
		{"other pm cannot delete", ProjectDelete, other, Target{OwnerID: uid(1)}, false},
		{"member views project", ProjectView, tm, Target{OwnerID: uid(1), Member: true}, true},
		{"outsider tm cannot view", ProjectView, tm, Target{OwnerID: uid(1)}, false},
		{"other role views any project", ProjectView, guest, Target{OwnerID: uid(1)}, true},
		{"pm creates task", TaskCreate, pm, Target{}, true},
		{"tm cannot delete task", TaskDelete, tm, Target{AssigneeID: uid(3)}, false},
		{"tm cannot assign", TaskAssign, tm, Target{AssigneeID: uid(3)}, false},
		{"assignee updates task", TaskUpdate, tm, Target{AssigneeID: uid(3)}, true},
		{"tm cannot update unassigned task", TaskUpdate, tm, Target{}, false},
		{"tm cannot update someone else's task", TaskUpdate, tm, Target{AssigneeID: uid(9)}, false},
		{"author deletes comment", CommentDelete, tm, Target{AuthorID: uid(3)}, true},
		{"any pm deletes comment", CommentDelete, other, Target{AuthorID: uid(3)}, true},
		{"tm cannot delete others' comment", CommentDelete, tm, Target{AuthorID: uid(7)}, false},
		{"uploader deletes file", FileDelete, tm, Target{AuthorID: uid(3), OwnerID: uid(1)}, true},
		{"owning pm deletes file", FileDelete, pm, Target{AuthorID: uid(3), OwnerID: uid(1)}, true},
		{"non-owning pm cannot delete file", FileDelete, other, Target{AuthorID: uid(3), OwnerID: uid(1)}, false},
		{"anyone downloads", FileDownload, guest, Target{}, true},
		{"unknown action", Action("nope"), pm, Target{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.action, tt.who, tt.target))
		})
	}
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Project{}, &model.Task{}))
	return db
}

func TestVisibilityScopes(t *testing.T) {
	db := openDB(t)

	users := []model.User{
		{ID: 1, Username: "pm", Email: "pm@x.test", Password: "x", Role: model.RoleProjectManager},
		{ID: 2, Username: "pm2", Email: "pm2@x.test", Password: "x", Role: model.RoleProjectManager},
		{ID: 3, Username: "tm", Email: "tm@x.test", Password: "x", Role: model.RoleTeamMember},
	}
	require.NoError(t, db.Create(&users).Error)
	projects := []model.Project{
		{ID: 10, ProjectName: "A", ProjectCode: "A", UserID: 1, Status: model.ProjectStatusToDo},
		{ID: 11, ProjectName: "B", ProjectCode: "B", UserID: 2, Status: model.ProjectStatusToDo},
	}
	require.NoError(t, db.Create(&projects).Error)
	tasks := []model.Task{
		{ID: 100, Title: "mine", ProjectID: 11, AssignedTo: uid(3), Status: model.TaskStatusPending, Priority: model.PriorityLow},
		{ID: 101, Title: "theirs", ProjectID: 10, Status: model.TaskStatusPending, Priority: model.PriorityLow},
	}
	require.NoError(t, db.Create(&tasks).Error)

	var got []model.Project
	require.NoError(t, db.Scopes(VisibleProjects(pm)).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, uint(10), got[0].ID)

	require.NoError(t, db.Scopes(VisibleProjects(tm)).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, uint(11), got[0].ID)

	require.NoError(t, db.Scopes(VisibleProjects(guest)).Find(&got).Error)
	assert.Len(t, got, 2)

	var gotTasks []model.Task
	require.NoError(t, db.Scopes(VisibleTasks(tm)).Find(&gotTasks).Error)
	require.Len(t, gotTasks, 1)
	assert.Equal(t, uint(100), gotTasks[0].ID)

	require.NoError(t, db.Scopes(VisibleTasks(pm)).Find(&gotTasks).Error)
	assert.Len(t, gotTasks, 2)

	var gotUsers []model.User
	require.NoError(t, db.Scopes(VisibleUsers(pm)).Find(&gotUsers).Error)
	assert.Len(t, gotUsers, 2)

	require.NoError(t, db.Scopes(VisibleUsers(tm)).Find(&gotUsers).Error)
	require.Len(t, gotUsers, 1)
	assert.Equal(t, uint(3), gotUsers[0].ID)
}
