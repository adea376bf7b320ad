package dto

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}
