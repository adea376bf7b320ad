package project

import (
	"errors"
	"net/http"
	"strings"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/model"
	"projectdesk/policy"
	"projectdesk/services"
	"projectdesk/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func ProjectController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("/projects", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.GET("", func(c *gin.Context) {
			ListProjects(c, deps.DB)
		})
		routes.POST("", func(c *gin.Context) {
			CreateProject(c, deps.DB)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetProject(c, deps.DB)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateProject(c, deps.DB)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteProject(c, deps.DB, deps.Disks)
		})
		routes.GET("/:id/totals", func(c *gin.Context) {
			ProjectTotals(c, deps.DB)
		})
	}
}

func ListProjects(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	projects := []model.Project{}
	err := db.WithContext(c.Request.Context()).
		Scopes(policy.VisibleProjects(p)).
		Preload("Manager").
		Order("projects.created_at DESC").Order("projects.id DESC").
		Find(&projects).Error
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject always starts the project in "To Do" owned by the caller.
func CreateProject(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	if !policy.Allow(policy.ProjectCreate, p, policy.Target{}) {
		apperror.Respond(c, apperror.Denied())
		return
	}
	var req dto.CreateProjectRequest
	if !controller.BindJSON(c, &req) {
		return
	}

	project := model.Project{
		ProjectName:       strings.TrimSpace(req.ProjectName),
		ProjectCode:       strings.TrimSpace(req.ProjectCode),
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            model.ProjectStatusToDo,
		Budget:            req.Budget,
		ActualExpenditure: req.ActualExpenditure,
		UserID:            p.ID,
	}
	if err := validateProject(c, db, &project); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := db.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
		apperror.Respond(c, duplicateCode(err))
		return
	}
	c.JSON(http.StatusCreated, project)
}

// loadProject fetches the project and evaluates action against it.
func loadProject(c *gin.Context, db *gorm.DB, action policy.Action) (*model.Project, bool) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	project, err := services.GetProjectData(c.Request.Context(), db, id)
	if err != nil {
		apperror.Respond(c, err)
		return nil, false
	}

	p := middleware.CurrentPrincipal(c)
	target := policy.Target{OwnerID: &project.UserID}
	if p.IsMember() {
		member, err := services.IsProjectMember(c.Request.Context(), db, project.ID, p.ID)
		if err != nil {
			apperror.Respond(c, err)
			return nil, false
		}
		target.Member = member
	}
	if !policy.Allow(action, p, target) {
		apperror.Respond(c, apperror.Denied())
		return nil, false
	}
	return project, true
}

func GetProject(c *gin.Context, db *gorm.DB) {
	project, ok := loadProject(c, db, policy.ProjectView)
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(c)
	err := db.WithContext(c.Request.Context()).
		Preload("Manager").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(policy.VisibleTasks(p)).Order("tasks.id")
		}).
		Preload("Tasks.Assignee").
		First(project, project.ID).Error
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func UpdateProject(c *gin.Context, db *gorm.DB) {
	project, ok := loadProject(c, db, policy.ProjectUpdate)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !controller.BindJSON(c, &req) {
		return
	}

	if req.ProjectName != nil {
		project.ProjectName = strings.TrimSpace(*req.ProjectName)
	}
	if req.ProjectCode != nil {
		project.ProjectCode = strings.TrimSpace(*req.ProjectCode)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Status != nil {
		if !model.ValidProjectStatus(*req.Status) {
			apperror.Respond(c, apperror.Invalid("status", "The selected status is invalid."))
			return
		}
		project.Status = *req.Status
	}
	if req.Budget != nil {
		project.Budget = req.Budget
	}
	if req.ActualExpenditure != nil {
		project.ActualExpenditure = req.ActualExpenditure
	}

	if err := validateProject(c, db, project); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := db.WithContext(c.Request.Context()).Omit(clause.Associations).Save(project).Error; err != nil {
		apperror.Respond(c, duplicateCode(err))
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject removes the project with its tasks, comments, issues and
// files in one transaction. Blobs go after commit.
func DeleteProject(c *gin.Context, db *gorm.DB, disks *storage.Manager) {
	project, ok := loadProject(c, db, policy.ProjectDelete)
	if !ok {
		return
	}
	var files []model.File
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		files, err = services.PurgeProject(tx, project.ID)
		return err
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	controller.DeleteBlobs(c.Request.Context(), disks, files)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func ProjectTotals(c *gin.Context, db *gorm.DB) {
	project, ok := loadProject(c, db, policy.ProjectView)
	if !ok {
		return
	}
	var tasks []model.Task
	if err := db.WithContext(c.Request.Context()).Where("project_id = ?", project.ID).Order("id").Find(&tasks).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, services.Totals(tasks))
}

func validateProject(c *gin.Context, db *gorm.DB, project *model.Project) error {
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(project.StartDate.Time) {
		return apperror.Invalid("end_date", "The end date must be a date after or equal to start date.")
	}
	var n int64
	q := db.WithContext(c.Request.Context()).Model(&model.Project{}).Where("project_code = ?", project.ProjectCode)
	if project.ID != 0 {
		q = q.Where("id <> ?", project.ID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.Invalid("project_code", "The project code has already been taken.")
	}
	return nil
}

func duplicateCode(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Invalid("project_code", "The project code has already been taken.")
	}
	return err
}
