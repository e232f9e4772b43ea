package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elearn_backend/internal/config"
	"elearn_backend/internal/controller"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/security"
	"elearn_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user         *repository.UserRepository
	profile      *repository.ProfileRepository
	quiz         *repository.QuizRepository
	submission   *repository.SubmissionRepository
	progress     *repository.ProgressRepository
	learningPath *repository.LearningPathRepository
	enrollment   *repository.EnrollmentRepository
}

type services struct {
	auth            *service.AuthService
	content         *service.ContentService
	progress        *service.ProgressService
	enrollment      *service.EnrollmentService
	profile         *service.ProfileService
	submission      *service.SubmissionService
	submissionQuery *service.SubmissionQueryService
}

type controllers struct {
	auth       *controller.AuthController
	content    *controller.ContentController
	learning   *controller.LearningController
	enrollment *controller.EnrollmentController
	profile    *controller.ProfileController
	submission *controller.SubmissionController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		profile:      repository.NewProfileRepository(db),
		quiz:         repository.NewQuizRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		progress:     repository.NewProgressRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, repos.profile, cfg)
	s.content = service.NewContentService(repos.learningPath, repos.quiz)
	s.progress = service.NewProgressService(repos.progress, repos.learningPath, repos.submission)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.progress, repos.learningPath)
	s.profile = service.NewProfileService(repos.profile, cfg.Engine)
	s.submission = service.NewSubmissionService(
		db,
		rdb,
		repos.user,
		repos.quiz,
		repos.submission,
		repos.learningPath,
		s.progress,
		cfg.Engine,
	)
	s.submissionQuery = service.NewSubmissionQueryService(repos.submission)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		content:    controller.NewContentController(s.content),
		learning:   controller.NewLearningController(s.submission, s.progress),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		profile:    controller.NewProfileController(s.profile),
		submission: controller.NewSubmissionController(s.submission, s.submissionQuery),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 拿不到 redis 时降级运行，档案写入只靠版本检查串行化
		logger.Log.Warn("Redis unavailable, profile locking degraded", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("elearn-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
