package app

import (
	"context"
	"exam_reviewer_backend/internal/config"
	"exam_reviewer_backend/internal/controller"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/internal/service"
	"exam_reviewer_backend/internal/util"
	"exam_reviewer_backend/pkg/clock"
	"exam_reviewer_backend/pkg/configwatcher"
	"exam_reviewer_backend/pkg/database"
	"exam_reviewer_backend/pkg/logger"
	"exam_reviewer_backend/pkg/monitoring"
	"exam_reviewer_backend/pkg/security"
	"exam_reviewer_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	attempt  *repository.AttemptRepository
	question *repository.QuestionRepository
	catalog  *repository.CatalogRepository
}

type services struct {
	attempt    *service.AttemptService
	answer     *service.AnswerService
	submission *service.SubmissionService
}

type controllers struct {
	attempt *controller.ReviewerAttemptController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		attempt:  repository.NewAttemptRepository(db),
		question: repository.NewQuestionRepository(db),
		catalog:  repository.NewCatalogRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, checker *permission.Checker) *services {
	clk := clock.Real{}

	provider, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		// 归档是尽力而为，存储不可用时不影响启动
		logger.Log.Error("Failed to initialize result archive storage", zap.Error(err))
	}
	archive := service.NewResultArchive(provider)
	cache := service.NewResultCache(rdb, time.Duration(cfg.Redis.ResultTTLMinutes)*time.Minute)

	return &services{
		attempt: service.NewAttemptService(
			repos.attempt,
			repos.question,
			repos.catalog,
			service.NewQuestionSelector(nil),
			clk,
			checker,
			cfg.Attempt,
		),
		answer:     service.NewAnswerService(repos.attempt, clk, checker),
		submission: service.NewSubmissionService(repos.attempt, clk, checker, cache, archive, cfg.Attempt),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		attempt: controller.NewReviewerAttemptController(s.attempt, s.answer, s.submission),
		health:  controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)
	util.RegisterJSONTagNames()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	checker := permission.NewChecker(nil)
	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, rdb, checker)
	ctrls := app.initControllers(svcs)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, checker, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Server.Mode)
		logger.Log.Info("Config reloaded", zap.String("mode", newCfg.Server.Mode))
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopWatch := make(chan struct{})
	go configwatcher.WatchConfig(filepath.Join(a.Config.Dir, "config.yaml"), stopWatch, func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(stopWatch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}

// requestLogger 用 zap 记录访问日志
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(util.RequestIDKey)))
	}
}
