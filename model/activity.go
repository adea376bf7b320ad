package model

import (
	"time"

	"gorm.io/datatypes"
)

const ActivityAmountUpdated = "amount_updated"

// Activity is an append-only audit row on a polymorphic subject, normally an Issue.
type Activity struct {
	ID          uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	SubjectType string            `gorm:"column:subject_type;type:varchar(255);not null;index:idx_activities_subject" json:"subject_type"`
	SubjectID   uint              `gorm:"column:subject_id;not null;index:idx_activities_subject" json:"subject_id"`
	Type        string            `gorm:"column:type;type:varchar(64);not null" json:"type"`
	Changes     datatypes.JSONMap `gorm:"column:changes" json:"changes"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE" json:"user,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}
