package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/projecthub/internal/config"
	"github.com/GlebRadaev/projecthub/internal/gateway"
	"github.com/GlebRadaev/projecthub/internal/handlers"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/otp"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/internal/repo"
	"github.com/GlebRadaev/projecthub/internal/service"
	"github.com/GlebRadaev/projecthub/internal/service/authservice"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories

	closers []func()
	errCh   chan error
	wg      sync.WaitGroup
	ready   bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	store, uploadsDir, err := buildStorage(cfg)
	if err != nil {
		return fmt.Errorf("can't build file storage: %w", err)
	}
	otpStore, err := a.buildOTPStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("can't build otp store: %w", err)
	}
	notifier, err := notify.New(buildSender(cfg))
	if err != nil {
		return fmt.Errorf("can't build notifier: %w", err)
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	conn := pg.New(pool)
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)
	a.srv = service.New(a.repo, txManager, service.Deps{
		OTPStore: otpStore,
		Notifier: notifier,
		Storage:  store,
		Gateway:  gateway.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransIsProduction),
		JWT:      jwtService,
		TokenTTL: cfg.JWTTTL,
		OTPTTL:   cfg.OTPTTL,
		BaseURL:  cfg.BaseURL,
	})
	a.api = handlers.New(a.srv, jwtService, uploadsDir)

	if err := a.srv.AuthService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zap.L().Error("can't create admin account", zap.Error(err))
		return fmt.Errorf("can't create admin account: %w", err)
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// buildStorage returns the configured backend and, for disk, the directory to serve under /uploads/.
func buildStorage(cfg *config.Config) (service.Storage, string, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3, err := storage.NewS3(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			return nil, "", err
		}
		zap.L().Info("storing uploads in s3", zap.String("bucket", cfg.S3Bucket))
		return s3, "", nil
	case "disk", "":
		zap.L().Info("storing uploads on disk", zap.String("dir", cfg.UploadsDir))
		return storage.NewDisk(cfg.UploadsDir), cfg.UploadsDir, nil
	default:
		return nil, "", fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

func (a *Application) buildOTPStore(ctx context.Context, cfg *config.Config) (authservice.OTPStore, error) {
	if cfg.RedisURL == "" {
		zap.L().Info("keeping otp codes in memory")
		return otp.NewMemoryStore(), nil
	}
	client, err := otp.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	zap.L().Info("keeping otp codes in redis")
	return otp.NewRedisStore(client), nil
}

func buildSender(cfg *config.Config) notify.Sender {
	if cfg.SMTPHost == "" {
		return notify.LogSender{}
	}
	return notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
		for _, c := range a.closers {
			c()
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
