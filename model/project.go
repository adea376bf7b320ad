package model

import "time"

const (
	ProjectStatusToDo       = "To Do"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusDone       = "Done"
)

var ProjectStatuses = []string{ProjectStatusToDo, ProjectStatusInProgress, ProjectStatusDone}

type Project struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectName       string    `gorm:"column:project_name;type:varchar(255);not null" json:"project_name"`
	ProjectCode       string    `gorm:"column:project_code;type:varchar(64);uniqueIndex;not null" json:"project_code"`
	Description       string    `gorm:"column:description;type:text" json:"description"`
	StartDate         *Date     `gorm:"column:start_date" json:"start_date"`
	EndDate           *Date     `gorm:"column:end_date" json:"end_date"`
	Status            string    `gorm:"column:status;type:varchar(32);not null;default:'To Do'" json:"status"`
	Budget            *float64  `gorm:"column:budget;type:decimal(15,2)" json:"budget"`
	ActualExpenditure *float64  `gorm:"column:actual_expenditure;type:decimal(15,2)" json:"actual_expenditure"`
	UserID            uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Manager *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE" json:"manager,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"tasks,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

func ValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}
