package connection

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectdesk/config"
	"projectdesk/controller"
	"projectdesk/controller/auth"
	"projectdesk/controller/comment"
	"projectdesk/controller/file"
	"projectdesk/controller/issue"
	"projectdesk/controller/notification"
	"projectdesk/controller/project"
	"projectdesk/controller/task"
	"projectdesk/controller/user"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/scheduler"
	"projectdesk/services"
	"projectdesk/storage"
	"projectdesk/web"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

// SetupRouter mounts the API under /api, the local blob disk under /storage
// and the dashboard at /.
func SetupRouter(deps *controller.Deps, local *storage.LocalDisk) *gin.Engine {
	dto.RegisterValidation()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	origins := deps.Config.CORS.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(deps.Config.RateLimit.AuthPerMinute)
	auth.AuthController(api, deps, limiter)
	user.UserController(api, deps)
	project.ProjectController(api, deps)
	task.TaskController(api, deps)
	comment.CommentController(api, deps)
	file.FileController(api, deps)
	issue.IssueController(api, deps)
	notification.NotificationController(api, deps)

	if local != nil {
		serveLocalDisk(router, local.Fs())
	}
	web.Register(router)
	return router
}

// serveLocalDisk exposes stored blobs read-only. Directories are never listed.
func serveLocalDisk(router *gin.Engine, fs afero.Fs) {
	router.GET("/storage/*path", func(c *gin.Context) {
		f, err := fs.Open(c.Param("path"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	})
}

// Build wires the services for cfg. The closers release external clients.
func Build(ctx context.Context, cfg *config.Config) (*controller.Deps, *storage.LocalDisk, []io.Closer, error) {
	DB, err := DBConnection(cfg.Database, !cfg.IsProduction())
	if err != nil {
		return nil, nil, nil, err
	}

	var app *firebase.App
	if cfg.NeedsFirebase() {
		app, err = FBConnection(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	var pushers []services.Pusher
	var closers []io.Closer
	if app != nil {
		pushers, closers, err = Pushers(ctx, app, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	disks, local, err := Disks(ctx, app, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	deps := &controller.Deps{
		DB:            DB,
		Config:        cfg,
		Tokens:        services.NewTokenService(DB, cfg.JWT.Secret, cfg.JWT.TTL),
		Notifications: services.NewNotificationService(DB, pushers...),
		Disks:         disks,
	}
	return deps, local, closers, nil
}

func StartServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, local, closers, err := Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	cron, err := scheduler.StartScheduler(deps.Tokens)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           otelhttp.NewHandler(SetupRouter(deps, local), "projectdesk"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Api is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		<-cron.Stop().Done()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
