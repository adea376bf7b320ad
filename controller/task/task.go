package task

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/model"
	"projectdesk/policy"
	"projectdesk/services"
	"projectdesk/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TaskController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("/tasks", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, deps.DB)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTask(c, deps.DB, deps.Notifications)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, deps.DB)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateTask(c, deps.DB, deps.Notifications)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTask(c, deps.DB, deps.Disks)
		})
		routes.PUT("/:id/assign", func(c *gin.Context) {
			AssignTask(c, deps.DB, deps.Notifications)
		})
	}
}

// ListTasks returns every task to managers and only their own to team members.
func ListTasks(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	q := db.WithContext(c.Request.Context()).
		Scopes(policy.VisibleTasks(p)).
		Preload("Project").
		Preload("Assignee")
	if projectID := cast.ToUint(c.Query("project_id")); projectID != 0 {
		q = q.Where("tasks.project_id = ?", projectID)
	}
	if status, ok := model.NormalizeTaskStatus(c.Query("status")); ok {
		q = q.Where("tasks.status IN ?", statusSpellings(status))
	}

	tasks := []model.Task{}
	if err := q.Order("tasks.created_at DESC").Order("tasks.id DESC").Find(&tasks).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func statusSpellings(status string) []string {
	if status == model.TaskStatusPending {
		return []string{model.TaskStatusPending, model.TaskStatusNotStarted}
	}
	return []string{status}
}

func CreateTask(c *gin.Context, db *gorm.DB, notifier *services.NotificationService) {
	p := middleware.CurrentPrincipal(c)
	if !policy.Allow(policy.TaskCreate, p, policy.Target{}) {
		apperror.Respond(c, apperror.Denied())
		return
	}
	var req dto.CreateTaskRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if err := requireProject(ctx, db, req.ProjectID); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := requireAssignee(ctx, db, req.AssignedTo); err != nil {
		apperror.Respond(c, err)
		return
	}

	task := model.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      model.TaskStatusPending,
		Priority:    model.PriorityMedium,
		AssignedTo:  req.AssignedTo,
		ProjectID:   req.ProjectID,
		Deadline:    req.Deadline,
		Budget:      req.Budget,
		AmountUsed:  req.AmountUsed,
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.Status != "" {
		services.ApplyStatus(&task, req.Status, time.Now())
	}

	var sent []*model.Notification
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if task.AssignedTo != nil && *task.AssignedTo != p.ID {
			n, err := notifier.Notify(ctx, tx, *task.AssignedTo, services.TaskAssignedMessage(&task), model.NotificationTaskAssigned, services.TaskPayload(&task))
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

	reloaded, err := services.GetTaskData(ctx, db, task.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, reloaded)
}

// loadTask fetches the task with its project and evaluates action against it.
func loadTask(c *gin.Context, db *gorm.DB, action policy.Action) (*model.Task, bool) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	task, err := services.GetTaskData(c.Request.Context(), db, id)
	if err != nil {
		apperror.Respond(c, err)
		return nil, false
	}
	target := policy.Target{AssigneeID: task.AssignedTo}
	if task.Project != nil {
		target.OwnerID = &task.Project.UserID
	}
	if !policy.Allow(action, middleware.CurrentPrincipal(c), target) {
		apperror.Respond(c, apperror.Denied())
		return nil, false
	}
	return task, true
}

// LoadVisibleTask is used by the comment and file routes nested under a task.
func LoadVisibleTask(c *gin.Context, db *gorm.DB) (*model.Task, bool) {
	return loadTask(c, db, policy.TaskView)
}

func GetTask(c *gin.Context, db *gorm.DB) {
	task, ok := loadTask(c, db, policy.TaskView)
	if !ok {
		return
	}
	if err := db.WithContext(c.Request.Context()).Preload("Assignee").First(task, task.ID).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update. A team member may only send status and
// deadline, and only for a task assigned to them.
func UpdateTask(c *gin.Context, db *gorm.DB, notifier *services.NotificationService) {
	task, ok := loadTask(c, db, policy.TaskUpdate)
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	var sentFields map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&sentFields, binding.JSON); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}
	if !p.IsManager() {
		for field := range sentFields {
			if !policy.MemberEditableTaskFields[field] {
				apperror.Respond(c, apperror.Denied())
				return
			}
		}
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	prevAssignee := task.AssignedTo
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.ProjectID != nil && *req.ProjectID != task.ProjectID {
		if err := requireProject(ctx, db, *req.ProjectID); err != nil {
			apperror.Respond(c, err)
			return
		}
		task.ProjectID = *req.ProjectID
		task.Project = nil
	}
	if _, sent := sentFields["assigned_to"]; sent {
		if err := requireAssignee(ctx, db, req.AssignedTo); err != nil {
			apperror.Respond(c, err)
			return
		}
		task.AssignedTo = req.AssignedTo
	}
	if _, sent := sentFields["deadline"]; sent {
		task.Deadline = req.Deadline
	}
	if req.Budget != nil {
		task.Budget = req.Budget
	}
	if req.AmountUsed != nil {
		task.AmountUsed = req.AmountUsed
	}
	completed := false
	if req.Status != nil {
		completed = services.ApplyStatus(task, *req.Status, time.Now())
	}

	var sent []*model.Notification
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if completed {
			project, err := services.GetProjectData(ctx, tx, task.ProjectID)
			if err != nil {
				return err
			}
			if project.UserID != p.ID {
				n, err := notifier.Notify(ctx, tx, project.UserID, services.TaskCompletedMessage(task), model.NotificationTaskCompleted, services.TaskPayload(task))
				if err != nil {
					return err
				}
				sent = append(sent, n)
			}
		}
		if newAssignee(prevAssignee, task.AssignedTo, p.ID) {
			n, err := notifier.Notify(ctx, tx, *task.AssignedTo, services.TaskAssignedMessage(task), model.NotificationTaskAssigned, services.TaskPayload(task))
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

	reloaded, err := services.GetTaskData(ctx, db, task.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, reloaded)
}

func DeleteTask(c *gin.Context, db *gorm.DB, disks *storage.Manager) {
	task, ok := loadTask(c, db, policy.TaskDelete)
	if !ok {
		return
	}
	var files []model.File
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		files, err = services.PurgeTasks(tx, []uint{task.ID})
		return err
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	controller.DeleteBlobs(c.Request.Context(), disks, files)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AssignTask changes assigned_to and nothing else.
func AssignTask(c *gin.Context, db *gorm.DB, notifier *services.NotificationService) {
	task, ok := loadTask(c, db, policy.TaskAssign)
	if !ok {
		return
	}
	var req dto.AssignTaskRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()
	if err := requireAssignee(ctx, db, req.AssignedTo); err != nil {
		apperror.Respond(c, err)
		return
	}

	prev := task.AssignedTo
	var sent []*model.Notification
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).UpdateColumn("assigned_to", *req.AssignedTo).Error; err != nil {
			return err
		}
		task.AssignedTo = req.AssignedTo
		if newAssignee(prev, task.AssignedTo, p.ID) {
			n, err := notifier.Notify(ctx, tx, *task.AssignedTo, services.TaskAssignedMessage(task), model.NotificationTaskAssigned, services.TaskPayload(task))
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

	reloaded, err := services.GetTaskData(ctx, db, task.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, reloaded)
}

// newAssignee reports whether next is a different user than prev and not the actor.
func newAssignee(prev, next *uint, actorID uint) bool {
	if next == nil || *next == actorID {
		return false
	}
	return prev == nil || *prev != *next
}

func requireProject(ctx context.Context, db *gorm.DB, projectID uint) error {
	_, err := services.GetProjectData(ctx, db, projectID)
	if apperror.Is(err, apperror.NotFound) {
		return apperror.Invalid("project_id", "The selected project id is invalid.")
	}
	return err
}

func requireAssignee(ctx context.Context, db *gorm.DB, userID *uint) error {
	if userID == nil {
		return nil
	}
	_, err := services.GetUserdata(ctx, db, *userID)
	if apperror.Is(err, apperror.NotFound) {
		return apperror.Invalid("assigned_to", "The selected assigned to is invalid.")
	}
	return err
}
