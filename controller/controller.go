package controller

import (
	"context"
	"log"
	"strconv"

	"projectdesk/apperror"
	"projectdesk/config"
	"projectdesk/model"
	"projectdesk/services"
	"projectdesk/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the route groups need. It is built once at startup.
type Deps struct {
	DB            *gorm.DB
	Config        *config.Config
	Tokens        *services.TokenService
	Notifications *services.NotificationService
	Disks         *storage.Manager
}

// ParamID parses a numeric path parameter. A malformed id is reported as 404.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperror.Respond(c, apperror.New(apperror.NotFound, "Resource not found"))
		return 0, false
	}
	return uint(id), true
}

// BindJSON binds the request body and writes a 422 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// DeleteBlobs removes the blobs of already deleted file rows. Failures leave
// orphaned blobs and are only logged.
func DeleteBlobs(ctx context.Context, disks *storage.Manager, files []model.File) {
	for _, f := range files {
		disk, err := disks.Disk(f.Disk)
		if err != nil {
			log.Printf("delete blob %s: %v", f.Path, err)
			continue
		}
		if err := disk.Delete(ctx, f.Path); err != nil {
			log.Printf("delete blob %s on %s: %v", f.Path, f.Disk, err)
		}
	}
}

func Summary(u *model.User) model.UserSummary {
	if u == nil {
		return model.UserSummary{}
	}
	return model.UserSummary{ID: u.ID, Name: u.Username, Username: u.Username}
}
