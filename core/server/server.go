package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendar-service/core/cache"
	"calendar-service/core/config"
	"calendar-service/core/constants"
	"calendar-service/core/controller"
	"calendar-service/core/database"
	"calendar-service/core/logger"
	"calendar-service/core/middleware"
	"calendar-service/core/platform"
	"calendar-service/core/queue"
	"calendar-service/modules/event"
	eventService "calendar-service/modules/event/service"
	"calendar-service/modules/notification"
	"calendar-service/modules/reminder"
	"calendar-service/modules/settings"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run loads configuration, serves the HTTP API and, when enabled, the
// reminder scanner and worker until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisCache := openCache(ctx, cfg.Redis)
	if redisCache != nil {
		defer redisCache.Close()
	}

	platformClient := platform.NewClient(platform.Config{
		BaseURL:   cfg.Platform.BaseURL,
		BotToken:  cfg.Platform.BotToken,
		BotUserID: cfg.Platform.BotUserID,
		Timeout:   cfg.Platform.Timeout,
		MemberTTL: cfg.Scheduling.MemberCacheTTL,
	}, redisCache)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	mw := middleware.NewMiddleware(cfg.Auth.JWTSecret)
	e.Use(echoMiddleware.Recover())
	e.Use(mw.RequestLogger())
	e.Use(echoMiddleware.ContextTimeoutWithConfig(echoMiddleware.ContextTimeoutConfig{
		Timeout: constants.DefaultRequestTimeout,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group(cfg.Server.BasePath)
	var members eventService.MembershipChecker
	if cfg.Platform.BaseURL != "" {
		members = platformClient
	}
	eventSvc := event.Init(api, db, members, cfg.Scheduling, mw)
	settings.Init(api, db, redisCache, cfg.Settings.CacheTTL, mw)
	inbox := notification.Init(api, db, mw)

	if cfg.Reminder.Enabled && redisCache != nil {
		shutdown, err := startReminders(cfg, eventSvc, inbox, platformClient, redisCache)
		if err != nil {
			return err
		}
		defer shutdown()
	} else if cfg.Reminder.Enabled {
		logger.Warn("Server:Reminders:Disabled", "reason", "redis unavailable")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", addr, "base_path", cfg.Server.BasePath)
		if err := e.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Server:Shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openDatabase returns nil for the memory driver.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.Database, error) {
	if cfg.Driver == constants.DatabaseDriverMemory {
		logger.Warn("Server:Database:Memory", "reason", "database.driver is memory; data is not persisted")
		return nil, nil
	}

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &db, nil
}

// openCache returns nil when redis does not answer; callers then run
// without caching or reminders.
func openCache(ctx context.Context, cfg config.RedisConfig) cache.Cache {
	c := cache.NewRedisCache(cache.RedisConfig{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.Warn("Server:Cache:Unavailable", "addr", cfg.Addr, "error", err.Error())
		c.Close()
		return nil
	}
	return c
}

func startReminders(cfg *config.Config, source reminder.UpcomingSource, inbox reminder.Inbox, client platform.Client, events reminder.Publisher) (func(), error) {
	redisOpt := queue.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	enqueuer := queue.NewClient(redisOpt)
	scanner := reminder.NewScanner(source, enqueuer, cfg.Reminder.Spec)

	mux := asynq.NewServeMux()
	reminder.NewWorker(client, inbox, events, cfg.Platform.BotUserID).Register(mux, constants.TaskReminderDeliver)
	worker := queue.NewServer(redisOpt, constants.ReminderQueue, cfg.Reminder.Concurrency)
	if err := worker.Start(mux); err != nil {
		enqueuer.Close()
		return nil, fmt.Errorf("start reminder worker: %w", err)
	}
	if err := scanner.Start(); err != nil {
		worker.Shutdown()
		enqueuer.Close()
		return nil, fmt.Errorf("start reminder scanner: %w", err)
	}

	return func() {
		scanner.Stop()
		worker.Shutdown()
		enqueuer.Close()
	}, nil
}
