package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/internal/config"
	"github.com/fastygo/taskmanager/internal/infrastructure/journal"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskmanager/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskmanager/internal/infrastructure/redis"
	"github.com/fastygo/taskmanager/internal/middleware"
	"github.com/fastygo/taskmanager/internal/router"
	"github.com/fastygo/taskmanager/internal/security"
	"github.com/fastygo/taskmanager/internal/services"
	"github.com/fastygo/taskmanager/internal/services/lifecycle"
	"github.com/fastygo/taskmanager/internal/token"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/pkg/logger"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/repository/postgres"
	redisRepo "github.com/fastygo/taskmanager/repository/redis"
	"github.com/fastygo/taskmanager/repository/sqlite"
	"github.com/fastygo/taskmanager/usecase"
	authUC "github.com/fastygo/taskmanager/usecase/auth"
	taskUC "github.com/fastygo/taskmanager/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Generated {
		zapLogger.Warn("JWT_SECRET not set, using a random development secret; tokens will not survive a restart")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopListening := manager.Listen(cancel)
	defer stopListening()

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
		checks   []monitor.Check
	)

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return sqlite.Close(db)
		})
		userRepo = sqlite.NewUserRepository(db)
		taskRepo = sqlite.NewTaskRepository(db)
		checks = append(checks, monitor.Check{Name: "sqlite", Pinger: sqlite.Pinger{DB: db}})
		zapLogger.Info("using sqlite store", zap.String("path", cfg.SQLite.Path))

	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
		checks = append(checks, monitor.Check{Name: "postgresql", Pinger: pool})
	}

	var attempts repository.LoginAttemptRepository
	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, login limiter disabled", zap.Error(err))
		} else {
			manager.Register("redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
			attempts = redisRepo.NewLoginAttemptRepository(redisClient, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
			checks = append(checks, monitor.Check{Name: "redis", Pinger: redisInfra.Pinger{Client: redisClient}, Optional: true})
		}
	}

	var (
		journalStore *journal.Store
		recorder     usecase.ActivityRecorder = usecase.NopRecorder{}
		activityRepo repository.ActivityRepository
		journalSize  monitor.Sizer
	)
	if cfg.Journal.Enabled {
		journalStore, err = journal.Open(cfg.Journal.Path, "activity")
		if err != nil {
			zapLogger.Fatal("failed to open activity journal", zap.Error(err))
		}
		manager.Register("journal", func(ctx context.Context) error {
			return journalStore.Close()
		})
		recorder = services.NewJournalRecorder(journalStore, zapLogger)
		activityRepo = journalStore
		journalSize = journalStore
		checks = append(checks, monitor.Check{Name: "journal", Pinger: journalStore, Optional: true})

		sweeper, err := services.NewJournalSweeper(journalStore, zapLogger, services.SweeperConfig{
			Interval:  cfg.Journal.SweepInterval,
			Retention: time.Duration(cfg.Journal.RetentionHours) * time.Hour,
			Schedule:  cfg.Journal.SweepSchedule,
		})
		if err != nil {
			zapLogger.Fatal("journal sweeper", zap.Error(err))
		}
		sweeper.Start()
		manager.Register("journal_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
	}

	mon := monitor.New(checks, journalSize, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}
	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost)

	authUseCase := authUC.New(userRepo, hasher, tokens, zapLogger,
		authUC.WithLoginAttempts(attempts),
		authUC.WithActivity(recorder),
	)
	taskUseCase := taskUC.New(taskRepo, recorder, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	split := apiHandler.WithSplitForbidden(cfg.Auth.SplitForbidden)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, split),
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger, split),
		Activity: apiHandler.NewActivityHandler(activityRepo, ctxAdapter, zapLogger, split),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	handler := router.New(handlers, router.Middleware{
		Auth:           middleware.JWTAuth(tokens, userRepo, ctxAdapter, zapLogger),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         zapLogger,
	})

	server := &fasthttp.Server{
		Handler:            handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
