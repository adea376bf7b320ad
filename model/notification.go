package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTaskCompleted = "task_completed"
	NotificationNewComment    = "new_comment"
	NotificationTaskAssigned  = "task_assigned"
)

// Notification is only ever mutated to set ReadAt.
type Notification struct {
	ID             uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Message        string            `gorm:"column:message;type:text;not null" json:"message"`
	Type           string            `gorm:"column:type;type:varchar(64);not null;index" json:"type"`
	NotifiableType string            `gorm:"column:notifiable_type;type:varchar(255);not null;index:idx_notifications_notifiable" json:"notifiable_type"`
	NotifiableID   uint              `gorm:"column:notifiable_id;not null;index:idx_notifications_notifiable" json:"notifiable_id"`
	Data           datatypes.JSONMap `gorm:"column:data" json:"data,omitempty"`
	ReadAt         *time.Time        `gorm:"column:read_at;index" json:"read_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
