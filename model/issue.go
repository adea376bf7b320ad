package model

import "time"

const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
	IssueStatusClosed     = "closed"
)

const (
	IssueTypeTask    = "task"
	IssueTypeProject = "project"
)

type Issue struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	ProjectID   uint      `gorm:"column:project_id;not null;index" json:"project_id"`
	TaskID      *uint     `gorm:"column:task_id;index" json:"task_id"`
	ReportedBy  uint      `gorm:"column:reported_by;not null;index" json:"reported_by"`
	Status      string    `gorm:"column:status;type:varchar(32);not null;default:open" json:"status"`
	Type        string    `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Amount      float64   `gorm:"column:amount;type:decimal(15,2);not null;default:0" json:"amount"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"project,omitempty"`
	Task     *Task    `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE" json:"task,omitempty"`
	Reporter *User    `gorm:"foreignKey:ReportedBy;references:ID;constraint:OnUpdate:CASCADE" json:"reporter,omitempty"`

	Activities []Activity `gorm:"-" json:"activities,omitempty"`
}

func (Issue) TableName() string {
	return "issues"
}

func ValidIssueStatus(s string) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

func ValidIssueType(t string) bool {
	return t == IssueTypeTask || t == IssueTypeProject
}
