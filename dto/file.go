package dto

import (
	"time"

	"projectdesk/model"
)

type FileResponse struct {
	ID               uint              `json:"id"`
	OriginalFilename string            `json:"original_filename"`
	MimeType         string            `json:"mime_type"`
	Size             int64             `json:"size"`
	Disk             string            `json:"disk"`
	URL              string            `json:"url"`
	DownloadURL      string            `json:"download_url"`
	CreatedAt        time.Time         `json:"created_at"`
	User             model.UserSummary `json:"user"`
}

type CommentResponse struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	TaskID    uint              `json:"task_id"`
	UserID    uint              `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	User      model.UserSummary `json:"user"`
}
