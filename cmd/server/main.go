package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meronoumer/moodreads/internal/cache"
	"github.com/meronoumer/moodreads/internal/config"
	"github.com/meronoumer/moodreads/internal/form"
	"github.com/meronoumer/moodreads/internal/handler"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/model"
	"github.com/meronoumer/moodreads/internal/router"
	"github.com/meronoumer/moodreads/internal/service"
	"github.com/meronoumer/moodreads/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ Backend client ---------------
	httpClient := &http.Client{
		Timeout: cfg.BackendTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	client, err := model.NewClient(cfg.BackendURLs, cfg.BackendBaseURL, cfg.BackendTimeout, model.WithHTTPClient(httpClient))
	if err != nil {
		logrus.Fatalf("failed to configure backend client %v", err)
	}
	logrus.WithField("endpoints", client.Endpoints()).Info("recommendation backend configured")

	// ------------ Redis cache (optional) ---------------
	var recCache service.Cache
	if cfg.RedisURL != "" {
		c, err := cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logrus.Fatalf("failed to connect to redis %v", err)
		}
		defer c.Close()
		recCache = c
		logrus.Info("connected to Redis")
	} else {
		logrus.Info("REDIS_URL not set, recommendation cache disabled")
	}

	svc := service.NewService(client, recCache)

	newView := func() *view.View {
		return view.New(svc,
			view.WithExamples(cfg.ExampleMoods),
			view.WithFormOptions(form.WithDefaultLimit(cfg.DefaultLimit)),
		)
	}
	sessions := handler.NewSessions(newView, cfg.SessionIdle, handler.WithMaxSessions(cfg.MaxSessions))
	go sessions.Run(ctx)

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(handler.NewHandler(svc, sessions), router.Options{SubmitRateLimit: cfg.SubmitRateLimit}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("server shutdown")
		}
	}()

	logrus.Infof("MoodReads running on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}
