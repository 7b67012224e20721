package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowerstand/cmd"
	httpapi "flowerstand/internal/adapters/in/http"
	"flowerstand/internal/pkg/logging"
	"flowerstand/migrations"

	"github.com/panjf2000/ants/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(configs.Log)
	defer func() {
		_ = logger.Sync()
	}()

	if err = run(configs, logger); err != nil {
		logger.Fatal("service stopped", zap.Error(err))
	}
}

func run(configs cmd.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrate(configs, logger); err != nil {
		return err
	}

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: logging.NewGormLogger(logger, logging.GormLevel(configs.DBLogLevel), configs.DBSlowThreshold),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       configs.RedisDB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	if err = redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	pool, err := ants.NewPool(configs.OutboxWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	app := cmd.NewCompositionRoot(configs, gormDB, redisClient, pool, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, configs.HTTPPort, logger)
}

func migrate(configs cmd.Config, logger *zap.Logger) error {
	migrator, err := migrations.Open(configs.DSN(), logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close()
	}()
	return migrator.Up()
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, port string, logger *zap.Logger) error {
	doc, err := httpapi.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}

	e, err := httpapi.NewRouter(app.CreateHTTPServer(), app.CreateAuthConfig(), doc, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", port))
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
