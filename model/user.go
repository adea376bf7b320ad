package model

import "time"

const (
	RoleProjectManager = "project_manager"
	RoleTeamMember     = "team_member"
)

type User struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"column:role;type:varchar(32);not null;default:team_member" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u User) IsManager() bool {
	return u.Role == RoleProjectManager
}

// UserSummary is the embedded author/uploader shape returned alongside comments,
// files and tasks.
type UserSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// ValidRole reports whether role can be chosen at registration.
func ValidRole(role string) bool {
	return role == RoleProjectManager || role == RoleTeamMember
}
