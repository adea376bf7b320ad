package model

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Status      string     `gorm:"column:status;type:varchar(32);not null;default:pending" json:"status"`
	Priority    string     `gorm:"column:priority;type:varchar(16);not null;default:medium" json:"priority"`
	AssignedTo  *uint      `gorm:"column:assigned_to;index" json:"assigned_to"`
	ProjectID   uint       `gorm:"column:project_id;not null;index" json:"project_id"`
	Deadline    *Date      `gorm:"column:deadline" json:"deadline"`
	Budget      *float64   `gorm:"column:budget;type:decimal(15,2)" json:"budget"`
	AmountUsed  *float64   `gorm:"column:amount_used;type:decimal(15,2)" json:"amount_used"`
	StartTime   *time.Time `gorm:"column:start_time" json:"start_time"`
	EndTime     *time.Time `gorm:"column:end_time" json:"end_time"`
	TimeSpent   *int64     `gorm:"column:time_spent" json:"time_spent"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Project  *Project  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"project,omitempty"`
	Assignee *User     `gorm:"foreignKey:AssignedTo;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE" json:"assignee,omitempty"`
	Comments []Comment `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"comments,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// NormalizeTaskStatus folds the not_started alias into pending. The second
// result is false for anything outside the task status set.
func NormalizeTaskStatus(s string) (string, bool) {
	switch s {
	case TaskStatusPending, TaskStatusNotStarted:
		return TaskStatusPending, true
	case TaskStatusInProgress, TaskStatusCompleted:
		return s, true
	}
	return "", false
}
