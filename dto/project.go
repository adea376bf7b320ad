package dto

import "projectdesk/model"

// CreateProjectRequest has no status or owner: the server sets both.
type CreateProjectRequest struct {
	ProjectName       string      `json:"project_name" binding:"required,max=255"`
	ProjectCode       string      `json:"project_code" binding:"required,max=64"`
	Description       string      `json:"description"`
	StartDate         *model.Date `json:"start_date"`
	EndDate           *model.Date `json:"end_date"`
	Budget            *float64    `json:"budget" binding:"omitempty,gte=0"`
	ActualExpenditure *float64    `json:"actual_expenditure" binding:"omitempty,gte=0"`
}

type UpdateProjectRequest struct {
	ProjectName       *string     `json:"project_name" binding:"omitempty,min=1,max=255"`
	ProjectCode       *string     `json:"project_code" binding:"omitempty,min=1,max=64"`
	Description       *string     `json:"description"`
	StartDate         *model.Date `json:"start_date"`
	EndDate           *model.Date `json:"end_date"`
	Status            *string     `json:"status"`
	Budget            *float64    `json:"budget" binding:"omitempty,gte=0"`
	ActualExpenditure *float64    `json:"actual_expenditure" binding:"omitempty,gte=0"`
}
