package app

import (
	"context"
	"dungeon_backend/internal/config"
	"dungeon_backend/internal/controller"
	"dungeon_backend/internal/repository"
	"dungeon_backend/internal/service"
	"dungeon_backend/pkg/configwatcher"
	"dungeon_backend/pkg/database"
	"dungeon_backend/pkg/lock"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"dungeon_backend/pkg/security"
	"dungeon_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
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
	Rules           *service.Rules
	services        *services
	limiter         *security.Limiter
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	stop            context.CancelFunc
}

type repositories struct {
	student      *repository.StudentRepository
	mental       *repository.MentalStateRepository
	instructor   *repository.InstructorRepository
	expLog       *repository.ExpLogRepository
	dialogue     *repository.DialogueRepository
	quiz         *repository.QuizRepository
	mission      *repository.MissionRepository
	raid         *repository.RaidRepository
	rankingCache *repository.RankingCache
}

type services struct {
	student    *service.StudentService
	mental     *service.MentalService
	instructor *service.InstructorService
	dialogue   *service.DialogueService
	raid       *service.RaidService
	mission    *service.MissionService
	game       *service.GameService
	ranking    *service.RankingService
}

type controllers struct {
	student    *controller.StudentController
	mental     *controller.MentalController
	instructor *controller.InstructorController
	raid       *controller.RaidController
	ranking    *controller.RankingController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	// TTL 每次写入时读取，热更新后立即生效
	cacheTTL := func() time.Duration { return a.Rules.Get().RankingCacheTTL() }

	return &repositories{
		student:      repository.NewStudentRepository(db),
		mental:       repository.NewMentalStateRepository(db),
		instructor:   repository.NewInstructorRepository(db),
		expLog:       repository.NewExpLogRepository(db),
		dialogue:     repository.NewDialogueRepository(db),
		quiz:         repository.NewQuizRepository(db),
		mission:      repository.NewMissionRepository(db),
		raid:         repository.NewRaidRepository(db),
		rankingCache: repository.NewRankingCache(rdb, cacheTTL),
	}
}

// newLocker 按配置选择进程内锁或 Redis 锁，统一附加超时
func newLocker(cfg config.GameConfig, rdb *redis.Client) lock.Locker {
	var base lock.Locker = lock.NewLocalLocker()
	if cfg.LockBackend == config.LockRedis {
		base = lock.NewRedisLocker(rdb, 2*cfg.LockTimeout()+5*time.Second)
	}
	return lock.WithTimeout{Locker: base, Timeout: cfg.LockTimeout()}
}

// newDialogueGenerator 未配置 API Key 时返回 nil，只使用静态台词
func newDialogueGenerator(cfg config.AIConfig) service.DialogueGenerator {
	if cfg.APIKey == "" {
		logger.Log.Info("AI dialogue disabled, using static lines")
		return nil
	}
	gen, err := service.NewOpenAIDialogueGenerator(cfg)
	if err != nil {
		logger.Log.Warn("Failed to create AI dialogue generator", zap.Error(err))
		return nil
	}
	return gen
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	locker := newLocker(cfg.Game, rdb)

	s.student = service.NewStudentService(repos.student, repos.expLog, locker)
	s.mental = service.NewMentalService(repos.mental, repos.student, locker)
	s.instructor = service.NewInstructorService(repos.instructor, repos.student, repos.expLog, repos.dialogue, locker, a.Rules)
	s.dialogue = service.NewDialogueService(newDialogueGenerator(cfg.AI), repos.dialogue, cfg.Game.DialogueTimeout(), nil)
	s.raid = service.NewRaidService(repos.raid, repos.student, repos.quiz, repos.expLog, locker, a.Rules)
	s.mission = service.NewMissionService(repos.mission, s.mental, nil)
	s.game = service.NewGameService(repos.quiz, s.student, s.mental, s.instructor, s.dialogue)
	s.ranking = service.NewRankingService(repos.student, repos.rankingCache)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		student:    controller.NewStudentController(s.student, s.game),
		mental:     controller.NewMentalController(s.mental, s.mission),
		instructor: controller.NewInstructorController(s.instructor),
		raid:       controller.NewRaidController(s.raid),
		ranking:    controller.NewRankingController(s.ranking),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定期结束超时的副本，间隔每轮重新读取以支持热更新
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	go func() {
		for {
			interval := a.Rules.Get().RaidSweepInterval()
			if interval <= 0 {
				interval = time.Minute
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
			n, err := s.raid.ExpireOverdue(ctx)
			if err != nil {
				logger.Log.Error("raid sweep error", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("Expired overdue raids", zap.Int("count", n))
			}
		}
	}()

	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}

	go func() {
		dir := a.Config.ConfigDir
		if dir == "" {
			dir = "configs"
		}
		err := configwatcher.Watch(ctx, dir, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Rules:  service.NewRules(cfg.Game),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 讲师记录缺失时后续所有答题都会失败，启动阶段直接终止
	if _, err := services.instructor.Seed(context.Background(), cfg.Game.InstructorName); err != nil {
		logger.Log.Fatal("Failed to seed instructor", zap.Error(err))
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		if err := app.Rules.Update(newCfg.Game); err != nil {
			logger.Log.Error("Rejected game rules update", zap.Error(err))
			return
		}
		logger.Log.Info("Game rules updated",
			zap.String("fatherRagePolicy", newCfg.Game.FatherRagePolicy),
			zap.String("raidRewardCurve", newCfg.Game.RaidRewardCurve),
		)
	})

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.limiter.SetLimit(newCfg.RateLimit.MaxRequests, newCfg.RateLimit.Window())
		logger.Reload(newCfg)
	})

	ctx, cancel := context.WithCancel(context.Background())
	app.stop = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stop != nil {
		a.stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
