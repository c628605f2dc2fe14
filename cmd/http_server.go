package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/confirm"
	"github.com/vitalis-clinic/backoffice/internal/content"
	contentpg "github.com/vitalis-clinic/backoffice/internal/content/postgres"
	"github.com/vitalis-clinic/backoffice/internal/core/events"
	"github.com/vitalis-clinic/backoffice/internal/menu"
	"github.com/vitalis-clinic/backoffice/internal/metrics"
	"github.com/vitalis-clinic/backoffice/internal/session"
	"github.com/vitalis-clinic/backoffice/internal/transport/rest"
	"github.com/vitalis-clinic/backoffice/internal/user"
	userpg "github.com/vitalis-clinic/backoffice/internal/user/postgres"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server of the back office.`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Cache  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				deps.Logger.Error("redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if os.Getenv("APP_ENV") == "production" {
		env = "production"
	}
	logger.Init(env, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	cache := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	router := chi.NewRouter()
	handlers, routerCfg := buildHandlers(config, gormDB, cache, lg)
	rest.RegisterAllRoutes(router, db.DB, cache, handlers, routerCfg, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Cache:  cache,
		Router: router,
		Logger: lg,
	}, nil
}

func buildHandlers(config *internal.Config, gormDB *gorm.DB, cache *redis.Client, lg *slog.Logger) (rest.Handlers, rest.RouterConfig) {
	sessions := session.NewManager(session.NewRedisStore(cache), config.Security.SessionDuration, lg)
	confirms := confirm.NewManager(confirm.DefaultTTL, lg)

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.FeedbackReceived, func(_ context.Context, e events.Event) error {
		lg.Info("feedback received from the public site", "event_id", e.EventID(), "payload", e.Payload())
		return nil
	})
	auditContentChanges(bus, lg)

	userRepo := userpg.NewRepository(gormDB)
	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokens, sessions, config.Security.BackofficePasswordHash, lg)
	authHandler := auth.NewHandler(authService, sessions)

	userService := user.NewService(userRepo, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService, confirms, nil)

	var rec metrics.Recorder
	var registry *prometheus.Registry
	if config.Observability.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)
		rec = collector
		authHandler.Metrics = rec
		userHandler.Metrics = rec
	}

	feedbackService := content.NewService(content.Feedbacks(), contentpg.NewRepository(gormDB, content.Feedbacks()), bus, lg)

	handlers := rest.Handlers{
		Auth:    authHandler,
		Menu:    menu.NewHandler(),
		Confirm: confirm.NewHandler(confirms),
		Users:   userHandler,
		Intake:  content.NewIntakeHandler(feedbackService, bus),

		Questions: newCollectionHandler(content.Questions(), gormDB, bus, confirms, rec, lg),
		Feedback:  content.NewHandler(feedbackService, confirms, rec),
		Letters:   newCollectionHandler(content.Letters(), gormDB, bus, confirms, rec, lg),
		Services:  newCollectionHandler(content.ClinicServices(), gormDB, bus, confirms, rec, lg),
		Partners:  newCollectionHandler(content.Partners(), gormDB, bus, confirms, rec, lg),
		Vacancies: newCollectionHandler(content.Vacancies(), gormDB, bus, confirms, rec, lg),
		Contacts:  newCollectionHandler(content.Contacts(), gormDB, bus, confirms, rec, lg),
	}

	routerCfg := rest.RouterConfig{
		AllowedOrigins:  config.Server.AllowedOrigins,
		Metrics:         rec,
		MetricsRegistry: registry,
	}

	return handlers, routerCfg
}

// auditContentChanges writes an audit line for every content mutation.
func auditContentChanges(bus *events.EventBus, lg *slog.Logger) {
	log := func(_ context.Context, e events.Event) error {
		lg.Info("content changed", "event_type", e.EventType(), "payload", e.Payload())
		return nil
	}
	bus.Subscribe(events.ContentSaved, log)
	bus.Subscribe(events.ContentDeleted, log)
}

func newCollectionHandler[T content.Record](
	collection content.Collection[T],
	gormDB *gorm.DB,
	bus content.EventPublisher,
	confirms *confirm.Manager,
	rec metrics.Recorder,
	lg *slog.Logger,
) *content.Handler[T] {
	repo := contentpg.NewRepository(gormDB, collection)
	service := content.NewService(collection, repo, bus, lg)
	return content.NewHandler(service, confirms, rec)
}

// initDB opens the pgx-backed connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
