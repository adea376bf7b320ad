package user

import (
	"net/http"
	"strings"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/controller/auth"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/policy"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func UserController(router *gin.RouterGroup, deps *controller.Deps) {
	authed := router.Group("", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		authed.GET("/users", func(c *gin.Context) {
			ListUsers(c, deps.DB)
		})
		authed.GET("/user", func(c *gin.Context) {
			Profile(c, deps.DB)
		})
		authed.PUT("/user", func(c *gin.Context) {
			UpdateProfile(c, deps.DB)
		})
	}
}

// ListUsers feeds the assignment picker: managers see everyone else, team
// members see only themselves.
func ListUsers(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	users := []dto.UserListItem{}
	err := db.WithContext(c.Request.Context()).
		Table("users").
		Select("id, username, email, role").
		Scopes(policy.VisibleUsers(p)).
		Order("username").
		Scan(&users).Error
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func Profile(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	user, err := services.GetUserdata(c.Request.Context(), db, p.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes username, email or password. Role is never taken
// from the request.
func UpdateProfile(c *gin.Context, db *gorm.DB) {
	p := middleware.CurrentPrincipal(c)
	var req dto.UpdateProfileRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	user, err := services.GetUserdata(c.Request.Context(), db, p.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var username, email string
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if err := auth.CheckUnique(c, db, username, email, user.ID); err != nil {
		apperror.Respond(c, err)
		return
	}
	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if req.Password != nil {
		if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
			apperror.Respond(c, apperror.Invalid("password", "The password confirmation does not match."))
			return
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		user.Password = hashed
	}

	if err := db.WithContext(c.Request.Context()).Select("username", "email", "password").Updates(user).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
