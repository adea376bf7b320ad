package policy

import (
	"projectdesk/model"

	"gorm.io/gorm"
)

// VisibleProjects limits a project query to what p may list: managers see
// their own projects, team members the projects holding one of their tasks,
// any other role sees everything.
func VisibleProjects(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch p.Role {
		case model.RoleProjectManager:
			return db.Where("projects.user_id = ?", p.ID)
		case model.RoleTeamMember:
			return db.Where("EXISTS (SELECT 1 FROM tasks WHERE tasks.project_id = projects.id AND tasks.assigned_to = ?)", p.ID)
		}
		return db
	}
}

// VisibleTasks limits a task query: team members only see tasks assigned to them.
func VisibleTasks(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsManager() {
			return db
		}
		if p.IsMember() {
			return db.Where("tasks.assigned_to = ?", p.ID)
		}
		return db
	}
}

// VisibleUsers limits the user directory: managers see every other user,
// everyone else sees only themselves.
func VisibleUsers(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsManager() {
			return db.Where("users.id <> ?", p.ID)
		}
		return db.Where("users.id = ?", p.ID)
	}
}
