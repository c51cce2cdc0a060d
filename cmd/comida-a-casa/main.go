package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comida-a-casa/internal/app"
	"comida-a-casa/internal/config"
	"comida-a-casa/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	if missing := cfg.Missing(); len(missing) > 0 {
		zlog.Warn("Missing credentials, serving the configuration screen", zap.Strings("missing", missing))
	}

	// 2. Initialize the application
	ctx := context.Background()
	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	gin.SetMode(gin.ReleaseMode)
	server, err := application.WebServer()
	if err != nil {
		zlog.Fatal("Failed to initialize web server", zap.Error(err))
	}

	// 3. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exiting")
}
