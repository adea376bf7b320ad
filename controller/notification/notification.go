package notification

import (
	"log"
	"net/http"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/middleware"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

func NotificationController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("/notifications", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.GET("", func(c *gin.Context) {
			ListNotifications(c, deps.Notifications)
		})
		routes.GET("/unread-count", func(c *gin.Context) {
			UnreadCount(c, deps.Notifications)
		})
		routes.POST("/mark-all-as-read", func(c *gin.Context) {
			MarkAllAsRead(c, deps.Notifications)
		})
		routes.POST("/:id/mark-as-read", func(c *gin.Context) {
			MarkAsRead(c, deps.Notifications)
		})
	}
}

// ListNotifications never fails the bell: read errors are logged and answered
// with an empty page.
func ListNotifications(c *gin.Context, svc *services.NotificationService) {
	p := middleware.CurrentPrincipal(c)
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	perPage := cast.ToInt(c.DefaultQuery("per_page", "15"))

	result, err := svc.Paginate(c.Request.Context(), p.ID, page, perPage)
	if err != nil {
		log.Printf("list notifications for user %d: %v", p.ID, err)
		c.JSON(http.StatusOK, services.EmptyPage(page, perPage))
		return
	}
	c.JSON(http.StatusOK, result)
}

func UnreadCount(c *gin.Context, svc *services.NotificationService) {
	p := middleware.CurrentPrincipal(c)
	n, err := svc.UnreadCount(c.Request.Context(), p.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func MarkAsRead(c *gin.Context, svc *services.NotificationService) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(c)
	n, err := svc.MarkAsRead(c.Request.Context(), p.ID, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification": n})
}

func MarkAllAsRead(c *gin.Context, svc *services.NotificationService) {
	p := middleware.CurrentPrincipal(c)
	n, err := svc.MarkAllAsRead(c.Request.Context(), p.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "count": n})
}
