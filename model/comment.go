package model

import "time"

const CommentMaxLength = 1000

type Comment struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	TaskID    uint      `gorm:"column:task_id;not null;index" json:"task_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
