package dto

type CreateIssueRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	ProjectID   uint     `json:"project_id" binding:"required"`
	TaskID      *uint    `json:"task_id"`
	Status      string   `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	Type        string   `json:"type" binding:"required,oneof=task project"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
}

type UpdateIssueRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	ProjectID   *uint    `json:"project_id"`
	TaskID      *uint    `json:"task_id"`
	Status      *string  `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	Type        *string  `json:"type" binding:"omitempty,oneof=task project"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
}
