package issue

import (
	"context"
	"net/http"
	"strings"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/model"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

func IssueController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("/issues", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.GET("", func(c *gin.Context) {
			ListIssues(c, deps.DB)
		})
		routes.POST("", func(c *gin.Context) {
			CreateIssue(c, deps.DB)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetIssue(c, deps.DB)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateIssue(c, deps.DB)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteIssue(c, deps.DB)
		})
		routes.GET("/:id/activities", func(c *gin.Context) {
			ListActivities(c, deps.DB)
		})
	}
}

func ListIssues(c *gin.Context, db *gorm.DB) {
	q := db.WithContext(c.Request.Context()).
		Preload("Project").
		Preload("Task").
		Preload("Reporter")
	if projectID := cast.ToUint(c.Query("project_id")); projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	if status := c.Query("status"); model.ValidIssueStatus(status) {
		q = q.Where("status = ?", status)
	}
	issues := []model.Issue{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&issues).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func CreateIssue(c *gin.Context, db *gorm.DB) {
	var req dto.CreateIssueRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	p := middleware.CurrentPrincipal(c)
	issue := model.Issue{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		ReportedBy:  p.ID,
		Status:      model.IssueStatusOpen,
		Type:        req.Type,
	}
	if req.Status != "" {
		issue.Status = req.Status
	}
	if req.Amount != nil {
		issue.Amount = *req.Amount
	}
	ctx := c.Request.Context()
	if err := validateIssue(ctx, db, &issue); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := db.WithContext(ctx).Create(&issue).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	respondIssue(c, db, issue.ID, http.StatusCreated)
}

func GetIssue(c *gin.Context, db *gorm.DB) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return
	}
	respondIssue(c, db, id, http.StatusOK)
}

// UpdateIssue saves the changes and records an amount_updated activity when
// the amount actually changed, both in one transaction.
func UpdateIssue(c *gin.Context, db *gorm.DB) {
	issue, ok := loadIssue(c, db)
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	if req.Title != nil {
		issue.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.ProjectID != nil {
		issue.ProjectID = *req.ProjectID
	}
	if req.Type != nil {
		issue.Type = *req.Type
		if issue.Type == model.IssueTypeProject && req.TaskID == nil {
			issue.TaskID = nil
		}
	}
	if req.TaskID != nil {
		issue.TaskID = req.TaskID
	}
	if req.Status != nil {
		issue.Status = *req.Status
	}
	if req.Amount != nil {
		issue.Amount = *req.Amount
	}

	ctx := c.Request.Context()
	if err := validateIssue(ctx, db, issue); err != nil {
		apperror.Respond(c, err)
		return
	}
	issue.Project, issue.Task, issue.Reporter = nil, nil, nil
	if err := services.SaveIssue(ctx, db, issue, middleware.CurrentPrincipal(c).ID); err != nil {
		apperror.Respond(c, err)
		return
	}
	respondIssue(c, db, issue.ID, http.StatusOK)
}

func DeleteIssue(c *gin.Context, db *gorm.DB) {
	issue, ok := loadIssue(c, db)
	if !ok {
		return
	}
	if err := services.DeleteIssue(c.Request.Context(), db, issue.ID); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

func ListActivities(c *gin.Context, db *gorm.DB) {
	issue, ok := loadIssue(c, db)
	if !ok {
		return
	}
	activities, err := services.IssueActivities(c.Request.Context(), db, issue.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func loadIssue(c *gin.Context, db *gorm.DB) (*model.Issue, bool) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	var issue model.Issue
	if err := db.WithContext(c.Request.Context()).First(&issue, id).Error; err != nil {
		apperror.Respond(c, apperror.From(err))
		return nil, false
	}
	return &issue, true
}

func respondIssue(c *gin.Context, db *gorm.DB, id uint, status int) {
	ctx := c.Request.Context()
	var issue model.Issue
	err := db.WithContext(ctx).
		Preload("Project").
		Preload("Task").
		Preload("Reporter").
		First(&issue, id).Error
	if err != nil {
		apperror.Respond(c, apperror.From(err))
		return
	}
	issue.Activities, err = services.IssueActivities(ctx, db, issue.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(status, issue)
}

// validateIssue enforces the type rule: task issues name a task of the same
// project, project issues name none.
func validateIssue(ctx context.Context, db *gorm.DB, issue *model.Issue) error {
	if issue.Title == "" {
		return apperror.Invalid("title", "The title field is required.")
	}
	if !model.ValidIssueStatus(issue.Status) {
		return apperror.Invalid("status", "The selected status is invalid.")
	}
	if issue.Amount < 0 {
		return apperror.Invalid("amount", "The amount must be at least 0.")
	}
	if _, err := services.GetProjectData(ctx, db, issue.ProjectID); err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return apperror.Invalid("project_id", "The selected project id is invalid.")
		}
		return err
	}

	if !model.ValidIssueType(issue.Type) {
		return apperror.Invalid("type", "The selected type is invalid.")
	}
	switch issue.Type {
	case model.IssueTypeTask:
		if issue.TaskID == nil {
			return apperror.Invalid("task_id", "The task id field is required when type is task.")
		}
		var task model.Task
		err := db.WithContext(ctx).Select("id", "project_id").First(&task, *issue.TaskID).Error
		if err != nil {
			if apperror.Is(apperror.From(err), apperror.NotFound) {
				return apperror.Invalid("task_id", "The selected task id is invalid.")
			}
			return err
		}
		if task.ProjectID != issue.ProjectID {
			return apperror.Invalid("task_id", "The task does not belong to the selected project.")
		}
	case model.IssueTypeProject:
		if issue.TaskID != nil {
			return apperror.Invalid("task_id", "The task id field must be empty when type is project.")
		}
	}
	return nil
}
