package comment

import (
	"net/http"
	"strings"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/controller/task"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/model"
	"projectdesk/policy"
	"projectdesk/services"
	"projectdesk/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func CommentController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.GET("/tasks/:id/comments", func(c *gin.Context) {
			ListComments(c, deps.DB)
		})
		routes.POST("/tasks/:id/comments", func(c *gin.Context) {
			CreateComment(c, deps.DB, deps.Notifications)
		})
		routes.DELETE("/comments/:id", func(c *gin.Context) {
			DeleteComment(c, deps.DB, deps.Disks)
		})
	}
}

func toResponse(cm model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        cm.ID,
		Content:   cm.Content,
		TaskID:    cm.TaskID,
		UserID:    cm.UserID,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
		User:      controller.Summary(cm.User),
	}
}

// ListComments returns the task's comments newest first with their author.
func ListComments(c *gin.Context, db *gorm.DB) {
	t, ok := task.LoadVisibleTask(c, db)
	if !ok {
		return
	}
	var comments []model.Comment
	err := db.WithContext(c.Request.Context()).
		Preload("User").
		Where("task_id = ?", t.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toResponse(cm))
	}
	c.JSON(http.StatusOK, out)
}

// CreateComment notifies the assignee and the project manager, except
// whichever of them wrote the comment.
func CreateComment(c *gin.Context, db *gorm.DB, notifier *services.NotificationService) {
	t, ok := task.LoadVisibleTask(c, db)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		apperror.Respond(c, apperror.Invalid("content", "The content field is required."))
		return
	}

	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()
	cm := model.Comment{Content: content, UserID: p.ID, TaskID: t.ID}
	var sent []*model.Notification
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cm).Error; err != nil {
			return err
		}
		payload := services.TaskPayload(t)
		payload["comment_id"] = cm.ID
		for _, recipient := range services.CommentRecipients(t, p.ID) {
			n, err := notifier.Notify(ctx, tx, recipient, services.NewCommentMessage(t), model.NotificationNewComment, payload)
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}
		return nil
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	notifier.Dispatch(ctx, sent...)

	if err := db.WithContext(ctx).Preload("User").First(&cm, cm.ID).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(cm))
}

// DeleteComment is allowed for the author and for any project manager.
func DeleteComment(c *gin.Context, db *gorm.DB, disks *storage.Manager) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var cm model.Comment
	if err := db.WithContext(ctx).First(&cm, id).Error; err != nil {
		apperror.Respond(c, apperror.From(err))
		return
	}
	if !policy.Allow(policy.CommentDelete, middleware.CurrentPrincipal(c), policy.Target{AuthorID: &cm.UserID}) {
		apperror.Respond(c, apperror.Denied())
		return
	}

	var files []model.File
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(services.MorphTo("fileable", model.KindComment, cm.ID)).Find(&files).Error; err != nil {
			return err
		}
		if err := tx.Scopes(services.MorphTo("fileable", model.KindComment, cm.ID)).Delete(&model.File{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Comment{}, cm.ID).Error
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	controller.DeleteBlobs(ctx, disks, files)
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
