package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
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

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sniffLen = 3072

func FileController(router *gin.RouterGroup, deps *controller.Deps) {
	routes := router.Group("", middleware.AccessTokenMiddleware(deps.Tokens))
	{
		routes.POST("/tasks/:id/files", func(c *gin.Context) {
			UploadFile(c, deps.DB, deps.Disks, deps.Config.App.URL)
		})
		routes.GET("/tasks/:id/files", func(c *gin.Context) {
			ListFiles(c, deps.DB, deps.Disks, deps.Config.App.URL)
		})
		routes.GET("/files/:id/download", func(c *gin.Context) {
			DownloadFile(c, deps.DB, deps.Disks)
		})
		routes.DELETE("/files/:id", func(c *gin.Context) {
			DeleteFile(c, deps.DB, deps.Disks)
		})
	}
}

// UploadFile validates the multipart "file" field before touching the disk
// or the database, then stores it under tasks/<task id>/.
func UploadFile(c *gin.Context, db *gorm.DB, disks *storage.Manager, appURL string) {
	t, ok := task.LoadVisibleTask(c, db)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		apperror.Respond(c, apperror.Invalid("file", "The file field is required."))
		return
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !model.AllowedFileExtensions[ext] {
		apperror.Respond(c, apperror.Invalid("file", "The file must be a file of type: jpg, jpeg, png, pdf, doc, docx, xls, xlsx, txt."))
		return
	}
	if header.Size > model.MaxUploadSize {
		apperror.Respond(c, apperror.Invalid("file", "The file may not be greater than 10240 kilobytes."))
		return
	}

	src, err := header.Open()
	if err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.Storage, "Failed to read upload", err))
		return
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		apperror.Respond(c, apperror.Wrap(apperror.Storage, "Failed to read upload", err))
		return
	}
	head = head[:n]
	mime := mimetype.Detect(head).String()

	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()
	disk := disks.Default()
	stored := uuid.NewString() + "." + ext
	record := model.File{
		UserID:           p.ID,
		FileableType:     model.KindTask.Tag(),
		FileableID:       t.ID,
		OriginalFilename: filepath.Base(header.Filename),
		StoredFilename:   stored,
		Path:             fmt.Sprintf("tasks/%d/%s", t.ID, stored),
		MimeType:         mime,
		Size:             header.Size,
		Disk:             disk.Name(),
	}

	if err := disk.Put(ctx, record.Path, io.MultiReader(bytes.NewReader(head), src), mime); err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.Storage, "Failed to store file", err))
		return
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		if derr := disk.Delete(ctx, record.Path); derr != nil {
			log.Printf("remove orphaned upload %s: %v", record.Path, derr)
		}
		apperror.Respond(c, err)
		return
	}
	record.User = &model.User{ID: p.ID}
	if err := db.WithContext(ctx).First(record.User, p.ID).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(record, disk, appURL))
}

func ListFiles(c *gin.Context, db *gorm.DB, disks *storage.Manager, appURL string) {
	t, ok := task.LoadVisibleTask(c, db)
	if !ok {
		return
	}
	var files []model.File
	err := db.WithContext(c.Request.Context()).
		Preload("User").
		Scopes(services.MorphTo("fileable", model.KindTask, t.ID)).
		Order("created_at DESC").Order("id DESC").
		Find(&files).Error
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	out := make([]dto.FileResponse, 0, len(files))
	for _, f := range files {
		disk, _ := disks.Disk(f.Disk)
		out = append(out, toResponse(f, disk, appURL))
	}
	c.JSON(http.StatusOK, out)
}

func toResponse(f model.File, disk storage.Disk, appURL string) dto.FileResponse {
	resp := dto.FileResponse{
		ID:               f.ID,
		OriginalFilename: f.OriginalFilename,
		MimeType:         f.MimeType,
		Size:             f.Size,
		Disk:             f.Disk,
		DownloadURL:      fmt.Sprintf("%s/api/files/%d/download", appURL, f.ID),
		CreatedAt:        f.CreatedAt,
		User:             model.UserSummary{ID: f.UserID},
	}
	if f.User != nil {
		resp.User.Username = f.User.Username
	}
	if disk != nil {
		resp.URL = disk.URL(f.Path)
	}
	return resp
}

// DownloadFile streams the blob. A row whose blob is gone is a 404.
func DownloadFile(c *gin.Context, db *gorm.DB, disks *storage.Manager) {
	f, ok := loadFile(c, db)
	if !ok {
		return
	}
	if !policy.Allow(policy.FileDownload, middleware.CurrentPrincipal(c), policy.Target{}) {
		apperror.Respond(c, apperror.Denied())
		return
	}
	disk, err := disks.Disk(f.Disk)
	if err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.Storage, "File storage unavailable", err))
		return
	}
	rc, err := disk.Open(c.Request.Context(), f.Path)
	if errors.Is(err, storage.ErrNotFound) {
		apperror.Respond(c, apperror.Missing("File"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.Storage, "Failed to read file", err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, f.Size, contentType(f), rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", f.OriginalFilename),
	})
}

func contentType(f *model.File) string {
	if f.MimeType != "" {
		return f.MimeType
	}
	return "application/octet-stream"
}

// DeleteFile is allowed for the uploader and for the manager owning the
// project the file hangs off. The row goes first and the blob after it.
func DeleteFile(c *gin.Context, db *gorm.DB, disks *storage.Manager) {
	f, ok := loadFile(c, db)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ownerID, err := owningManager(ctx, db, f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if !policy.Allow(policy.FileDelete, middleware.CurrentPrincipal(c), policy.Target{AuthorID: &f.UserID, OwnerID: ownerID}) {
		apperror.Respond(c, apperror.Denied())
		return
	}

	if err := db.WithContext(ctx).Delete(&model.File{}, f.ID).Error; err != nil {
		apperror.Respond(c, err)
		return
	}
	controller.DeleteBlobs(ctx, disks, []model.File{*f})
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func loadFile(c *gin.Context, db *gorm.DB) (*model.File, bool) {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	var f model.File
	if err := db.WithContext(c.Request.Context()).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperror.Respond(c, apperror.Missing("File"))
			return nil, false
		}
		apperror.Respond(c, err)
		return nil, false
	}
	return &f, true
}

// owningManager follows fileable up to its project. Orphans have no owner.
func owningManager(ctx context.Context, db *gorm.DB, f *model.File) (*uint, error) {
	kind, ok := model.KindOf(f.FileableType)
	if !ok {
		return nil, nil
	}
	db = db.WithContext(ctx)
	var projectIDs []uint
	var err error
	switch kind {
	case model.KindProject:
		projectIDs = []uint{f.FileableID}
	case model.KindTask:
		err = db.Model(&model.Task{}).Where("id = ?", f.FileableID).Pluck("project_id", &projectIDs).Error
	case model.KindComment:
		err = db.Model(&model.Task{}).
			Joins("JOIN comments ON comments.task_id = tasks.id").
			Where("comments.id = ?", f.FileableID).
			Pluck("tasks.project_id", &projectIDs).Error
	default:
		return nil, nil
	}
	if err != nil || len(projectIDs) == 0 {
		return nil, err
	}
	var owners []uint
	if err := db.Model(&model.Project{}).Where("id = ?", projectIDs[0]).Pluck("user_id", &owners).Error; err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, nil
	}
	return &owners[0], nil
}
