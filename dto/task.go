package dto

import "projectdesk/model"

type CreateTaskRequest struct {
	Title       string      `json:"title" binding:"required,max=255"`
	Description string      `json:"description"`
	Status      string      `json:"status" binding:"omitempty,oneof=pending not_started in_progress completed"`
	Priority    string      `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *uint       `json:"assigned_to"`
	ProjectID   uint        `json:"project_id" binding:"required"`
	Deadline    *model.Date `json:"deadline"`
	Budget      *float64    `json:"budget" binding:"omitempty,gte=0"`
	AmountUsed  *float64    `json:"amount_used" binding:"omitempty,gte=0"`
}

type UpdateTaskRequest struct {
	Title       *string     `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string     `json:"description"`
	Status      *string     `json:"status" binding:"omitempty,oneof=pending not_started in_progress completed"`
	Priority    *string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *uint       `json:"assigned_to"`
	ProjectID   *uint       `json:"project_id"`
	Deadline    *model.Date `json:"deadline"`
	Budget      *float64    `json:"budget" binding:"omitempty,gte=0"`
	AmountUsed  *float64    `json:"amount_used" binding:"omitempty,gte=0"`
}

type AssignTaskRequest struct {
	AssignedTo *uint `json:"assigned_to" binding:"required"`
}
