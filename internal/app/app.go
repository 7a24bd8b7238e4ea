package app

import (
	"context"
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/controller"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/pkg/database"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"exam_portal_backend/pkg/security"
	"exam_portal_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	test      *repository.TestRepository
	question  *repository.QuestionRepository
	attempt   *repository.AttemptRepository
	answer    *repository.AnswerRepository
	integrity *repository.IntegrityEventRepository
	topicStat *repository.TopicStatRepository
}

type services struct {
	auth     *service.AuthService
	test     *service.TestService
	session  *service.SessionService
	ticker   *service.SessionTicker
	insight  *service.InsightService
	autosave *service.AutosaveCoordinator
	ranking  *service.RankingService
	bus      *service.EventBus
}

type controllers struct {
	auth    *controller.AuthController
	test    *controller.TestController
	session *controller.SessionController
	insight *controller.InsightController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig pushes a reloaded config to every registered callback.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		test:      repository.NewTestRepository(db),
		question:  repository.NewQuestionRepository(db),
		attempt:   repository.NewAttemptRepository(db),
		answer:    repository.NewAnswerRepository(db),
		integrity: repository.NewIntegrityEventRepository(db),
		topicStat: repository.NewTopicStatRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.test = service.NewTestService(repos.test, repos.question)

	s.bus = service.NewEventBus()
	s.bus.Subscribe(service.NewStreakTracker(repos.user))
	s.bus.Subscribe(service.NewWeakTopicAnalyzer(repos.question, repos.answer, repos.topicStat))

	s.autosave = service.NewAutosaveCoordinator(repos.answer,
		time.Duration(cfg.Exam.AutosaveDebounceSeconds)*time.Second)
	go s.autosave.Run()

	s.ranking = service.NewRankingService(repos.attempt, repos.user, rdb,
		cfg.Exam.RankingQueueSize,
		time.Duration(cfg.Exam.LeaderboardCacheMinutes)*time.Minute)
	go s.ranking.Run()

	s.session = service.NewSessionService(
		repos.test,
		repos.question,
		repos.answer,
		repos.attempt,
		repos.integrity,
		s.autosave,
		s.ranking,
		s.bus,
	)
	s.ticker = service.NewSessionTicker(s.session)

	s.insight = service.NewInsightService(repos.topicStat, repos.user)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		test:    controller.NewTestController(s.test, s.ranking),
		session: controller.NewSessionController(s.session, s.ticker),
		insight: controller.NewInsightController(s.insight),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
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

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	// Catches attempts whose deadline passed without any client interaction.
	go func() {
		interval := time.Duration(cfg.Exam.SweepIntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		for range ticker.C {
			s.session.SweepExpired()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	app.RegisterConfigCallback(func(next *config.Config) {
		services.autosave.SetDebounce(time.Duration(next.Exam.AutosaveDebounceSeconds) * time.Second)
	})

	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services, cfg)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Flush buffered answers and drain the ranking queue before the
	// process goes away.
	if a.services != nil {
		a.services.autosave.Stop()
		a.services.ranking.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
