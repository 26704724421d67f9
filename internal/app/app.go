package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/config"
	"github.com/HrushithaL/CyberQuest-sub001/internal/controller"
	"github.com/HrushithaL/CyberQuest-sub001/internal/grading"
	"github.com/HrushithaL/CyberQuest-sub001/internal/repository"
	"github.com/HrushithaL/CyberQuest-sub001/internal/service"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/configwatcher"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/database"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/monitoring"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/security"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user     *repository.UserRepository
	mission  *repository.MissionRepository
	progress *repository.ProgressRepository
}

type services struct {
	ai       *service.AIService
	eval     *service.EvaluationService
	auth     *service.AuthService
	mission  *service.MissionService
	progress *service.ProgressService
	storage  service.StorageProvider
}

type controllers struct {
	auth     *controller.AuthController
	mission  *controller.MissionController
	progress *controller.ProgressController
	health   *controller.HealthController
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
		logger.Log.Warn("Redis unavailable, mission cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	svcs := app.initServices(repos, cfg, db)
	app.services = svcs
	ctrls := app.initControllers(svcs, db)

	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cyberquest-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchConfig()

	return app
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		mission:  repository.NewMissionRepository(db, rdb),
		progress: repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage provider", zap.Error(err))
	}
	s.storage = storage

	s.ai = service.NewAIService(cfg.AI)
	s.eval = service.NewEvaluationService(s.ai, grading.NewCache(grading.DefaultCacheTTL), cfg.AI.AllowAnswerGeneration)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.mission = service.NewMissionService(repos.mission, repos.progress, repos.user, s.eval, s.ai, s.storage, db)
	s.progress = service.NewProgressService(repos.progress, repos.user)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		mission:  controller.NewMissionController(s.mission),
		progress: controller.NewProgressController(s.progress),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
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

// watchConfig reloads the config file on change so the AI grading
// toggle and credentials apply without a restart.
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		a.services.ai.UpdateConfig(cfg.AI)
		logger.Log.Info("Config reloaded", zap.Bool("ai_enabled", cfg.AI.Enabled))
	})
}

// SeedMissions loads mission documents from a JSON file, used by the
// -seed flag.
func (a *App) SeedMissions(path string, replace bool) (int, error) {
	return a.services.mission.SeedMissions(path, replace)
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
