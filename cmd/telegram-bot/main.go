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
	"comida-a-casa/internal/telegram"

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

	if cfg.TelegramBotToken == "" || len(cfg.TelegramUsers) == 0 {
		zlog.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_ALLOWED_USERS are required")
	}

	// 2. Initialize the application
	ctx := context.Background()
	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// 3. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, telegram.Deps{
		Store:        application.Store,
		Planner:      application.Planner,
		Clipper:      application.Clipper,
		Chats:        telegram.NewChatSessions(application.DB.SQL),
		Metrics:      application.Metrics,
		DatabasePath: application.DB.Path,
		Logger:       zlog,
	})
	if err != nil {
		zlog.Fatal("Failed to initialize Telegram Bot", zap.Error(err))
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           bot.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Telegram Bot Server listening", zap.String("port", cfg.Port))
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
