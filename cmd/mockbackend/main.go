package main

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meronoumer/moodreads/internal/config"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/mockbackend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	srv := &http.Server{
		Addr:              cfg.MockAddr(),
		Handler:           mockbackend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.Infof("mock recommendation backend on %s", cfg.MockAddr())
	logrus.Fatal(srv.ListenAndServe())
}
