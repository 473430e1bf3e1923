package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"newsroom/internal/api"
	"newsroom/internal/config"
	"newsroom/internal/jobs"
	"newsroom/internal/mail"
	"newsroom/internal/model"
	"newsroom/internal/ratelimit"
	"newsroom/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run() error {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	configureLogging(cfg)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		return fmt.Errorf("initialise repository: %w", err)
	}

	store, err := storage.NewStorage(&cfg)
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}

	mailer, err := mail.NewSender(&cfg)
	if err != nil {
		return fmt.Errorf("initialise mail sender: %w", err)
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, mailer)
	if err != nil {
		return fmt.Errorf("initialise http handler: %w", err)
	}

	redisClient := ratelimit.NewRedisClient(&cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	httpHandler.SetRateLimiter(redisClient)

	scheduler := jobs.NewScheduler(time.Minute)
	refresh := httpHandler.Stats().RefreshGauges
	if err := scheduler.Add("stats-gauges", cfg.StatsRefreshCron, refresh); err != nil {
		return err
	}
	scheduler.RunNow("stats-gauges", refresh)
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpHandler.Router()

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := api.NormalisePublicBase(cfg.StoragePublicBaseURL)
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("host", serverHost).Info("服务器启动")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// configureLogging 设置全局 logrus 格式与级别
func configureLogging(cfg config.Config) {
	if strings.EqualFold(cfg.LogFormat, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).WithField("level", cfg.LogLevel).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
