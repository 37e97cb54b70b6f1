package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "vregistry/docs"
	"vregistry/internal/config"
	"vregistry/internal/handlers"
	"vregistry/internal/idp"
	"vregistry/internal/middleware"
	"vregistry/internal/migrations"
	"vregistry/internal/notify"
	"vregistry/internal/repositories"
	"vregistry/internal/routes"
	"vregistry/internal/services"
)

// App держит общие ресурсы процесса: пул БД, Redis, NATS и роутер.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	cache  *redis.Client
	closer []func()
	router *gin.Engine
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.DSN, log); err != nil {
			return nil, err
		}
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a.closer = append(a.closer, func() {
		if err := db.Close(); err != nil {
			log.Warn("close db", zap.Error(err))
		}
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// === Redis (необязателен) ===
	if cfg.Redis.URL != "" {
		cache, err := newRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, login rate limit disabled", zap.Error(err))
		} else {
			a.cache = cache
			a.closer = append(a.closer, func() { _ = cache.Close() })
		}
	}

	notifier := a.buildNotifier()

	router, err := buildRouter(cfg, log, db, a.cache, notifier)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.router = router
	return a, nil
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// buildNotifier подключает настроенные каналы; ошибка подключения только логируется.
func (a *App) buildNotifier() notify.Notifier {
	var sinks []notify.Notifier
	if tg := a.cfg.Telegram; tg.BotToken != "" {
		bot, err := notify.NewTelegram(tg.BotToken, tg.ChatID, tg.APIEndpoint, a.log)
		if err != nil {
			a.log.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			sinks = append(sinks, bot)
		}
	}
	if e := a.cfg.Email; e.SMTPHost != "" {
		sinks = append(sinks, notify.NewEmail(e.SMTPHost, e.SMTPPort, e.SMTPUser, e.SMTPPassword, e.FromEmail, e.To, a.log))
	}
	if n := a.cfg.NATS; n.URL != "" {
		pub, err := notify.NewNATS(n.URL, n.SubjectPrefix, a.log)
		if err != nil {
			a.log.Warn("nats notifications disabled", zap.Error(err))
		} else {
			sinks = append(sinks, pub)
			a.closer = append(a.closer, pub.Close)
		}
	}
	if len(sinks) == 0 {
		return notify.Nop()
	}
	return notify.Multi(sinks...)
}

func buildAuth(cfg *config.Config, users repositories.UserRepository, log *zap.Logger) (services.AuthService, error) {
	switch cfg.Auth.Mode {
	case services.AuthModeLocal:
		return services.NewLocalAuthService(users, services.LocalAuthOptions{
			Secret:     []byte(cfg.Auth.JWTSecret),
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		}, log), nil
	case services.AuthModeIDP:
		client := idp.New(idp.Config{
			TokenURL:     cfg.IDP.TokenURL,
			UserInfoURL:  cfg.IDP.UserInfoURL,
			ClientID:     cfg.IDP.ClientID,
			ClientSecret: cfg.IDP.ClientSecret,
			Scopes:       cfg.IDP.Scopes,
			Timeout:      cfg.IDP.Timeout,
		})
		return services.NewIDPAuthService(client, users, log), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
}

func buildRouter(cfg *config.Config, log *zap.Logger, db *sql.DB, cache *redis.Client, notifier notify.Notifier) (*gin.Engine, error) {
	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	verifiedUserRepo := repositories.NewVerifiedUserRepository(db)
	verifiedVehicleRepo := repositories.NewVerifiedVehicleRepository(db)

	// === Services ===
	authService, err := buildAuth(cfg, userRepo, log)
	if err != nil {
		return nil, err
	}
	verifiedUserService := services.NewVerifiedUserService(verifiedUserRepo, userRepo, notifier, log)
	verifiedVehicleService := services.NewVerifiedVehicleService(verifiedVehicleRepo, vehicleRepo, notifier, log)

	// === Gin ===
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, routes.Deps{
		Auth:           authService,
		Cache:          cache,
		LoginMaxPerMin: cfg.Auth.LoginMaxPerMinute,
		Log:            log,
		AuthHandler:    handlers.NewAuthHandler(authService),
		UserHandler:    handlers.NewVerifiedUserHandler(verifiedUserService),
		VehicleHandler: handlers.NewVerifiedVehicleHandler(verifiedVehicleService),
		DisableSwagger: !cfg.Server.Swagger,
	})

	log.Info("router ready", zap.String("auth_mode", authService.Mode()), zap.Bool("rate_limit", cache != nil))
	return router, nil
}

func (a *App) Handler() http.Handler { return a.router }

// Run слушает порт до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Сервер запущен", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
	a.closer = nil
}
