package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/datatwine/CreateScale/internal/config"
	"github.com/datatwine/CreateScale/internal/db"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/goroutine"
	httpRouter "github.com/datatwine/CreateScale/internal/http/router"
	"github.com/datatwine/CreateScale/internal/infrastructure/memory"
	"github.com/datatwine/CreateScale/internal/infrastructure/persistence"
	"github.com/datatwine/CreateScale/internal/interface/http/handler"
	"github.com/datatwine/CreateScale/internal/logger"
	"github.com/datatwine/CreateScale/internal/service"
	"github.com/datatwine/CreateScale/internal/usecase/engagement"
)

// accessTokenTTL используется только при выпуске токенов, сервер их лишь проверяет.
const accessTokenTTL = 15 * time.Minute

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	// Хранилище заявок.
	var (
		engagementRepo repository.EngagementRepository
		profileRepo    repository.ProfileRepository
		healthHandler  *handler.HealthHandler
	)
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPoolConfig())
		if err != nil {
			logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			logger.Log.Fatalf("main: ошибка миграций: %v", err)
		}

		engagementRepo = persistence.NewEngagementRepositoryAdapter(dbConn)
		profileRepo = persistence.NewProfileRepositoryAdapter(dbConn)
		healthHandler = handler.NewHealthHandler(dbConn, cfg.StorageDriver)
	case config.StorageDriverMemory:
		logger.Log.Warn("main: заявки хранятся в памяти и пропадут при перезапуске, проверка профилей отключена")
		engagementRepo = memory.NewEngagementRepository()
		healthHandler = handler.NewHealthHandler(nil, cfg.StorageDriver)
	}

	// Сценарии.
	policy := cfg.Policy()
	createUC := engagement.NewCreateEngagementUseCase(engagementRepo, profileRepo, policy, time.Now)
	actionUC := engagement.NewPerformActionUseCase(engagementRepo, policy, time.Now)
	getUC := engagement.NewGetEngagementUseCase(engagementRepo)
	listUC := engagement.NewListEngagementsUseCase(engagementRepo)
	liveUC := engagement.NewListLiveEventsUseCase(engagementRepo, policy, time.Now)

	engagementHandler := handler.NewEngagementHandler(createUC, actionUC, getUC, listUC, liveUC)
	tokenManager := service.NewTokenManager(cfg.JWTSecret, accessTokenTTL)

	engine := httpRouter.SetupRouter(cfg, tokenManager, engagementHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	goroutine.SafeGo(func() {
		logger.Log.Infof("main: HTTP сервер запущен на порту %s (storage=%s, tz=%s)", cfg.HTTPPort, cfg.StorageDriver, cfg.Location)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Log.Errorf("main: сервер завершился с ошибкой: %v", err)
	}

	// Завершаем сервер при получении сигнала.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
	}
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
