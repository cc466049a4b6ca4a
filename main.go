package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rodpaiva/mensageiro-fit/internal/apperrors"
	"github.com/rodpaiva/mensageiro-fit/internal/config"
	"github.com/rodpaiva/mensageiro-fit/internal/database"
	"github.com/rodpaiva/mensageiro-fit/internal/googlefit"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
	"github.com/rodpaiva/mensageiro-fit/internal/repository"
	"github.com/rodpaiva/mensageiro-fit/internal/scheduler"
	"github.com/rodpaiva/mensageiro-fit/internal/services"
	"github.com/rodpaiva/mensageiro-fit/internal/state"
	"github.com/rodpaiva/mensageiro-fit/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	logger.Info("Starting Mensageiro Fit...")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	tokenSvc := services.NewTokenService(credRepo, cfg.Google.ClientID, cfg.Google.ClientSecret, services.GoogleTokenURL, httpClient)
	fitClient := googlefit.NewClient(httpClient, googlefit.BaseURL)
	healthSvc := services.NewHealthService(userRepo, snapshotRepo, tokenSvc, fitClient)
	userSvc := services.NewUserService(userRepo)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create Telegram bot", "error", err)
	}
	logger.Info("Bot authorized", "account", api.Self.UserName)
	sender := telegram.NewSender(api)

	var cursor state.CursorStore
	if cfg.Redis.Addr != "" {
		redisCursor, err := state.NewRedisCursor(cfg.Redis.Addr)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisCursor.Close()
		cursor = redisCursor
	} else {
		cursor = state.NewMemoryCursor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := telegram.NewListener(api, userSvc, cursor, cfg.UserEmail)
	go listener.Run(ctx)

	runReport := func() {
		logger.Info("Starting daily report run")
		text := healthSvc.GenerateDailyReport(ctx, cfg.UserEmail)

		user, err := userSvc.GetByEmail(ctx, cfg.UserEmail)
		if err != nil {
			logger.Warn("User not found, report not delivered", "email", cfg.UserEmail, "error", err)
			return
		}
		if user.TelegramChatID == "" {
			logger.Warn("User has no Telegram chat linked, send /start to the bot first", "email", cfg.UserEmail)
			return
		}
		chatID, err := strconv.ParseInt(user.TelegramChatID, 10, 64)
		if err != nil {
			logger.Error("Stored chat id is not numeric", "chat_id", user.TelegramChatID, "error", err)
			return
		}

		// Delivery failures are logged only; the run still counts as
		// complete and the next scheduled run retries naturally.
		if err := sender.Send(chatID, text); err != nil {
			appErr := apperrors.NewDeliveryError(err)
			logger.Error("Failed to deliver report", appErr.LogFields()...)
			return
		}
		logger.Info("Report delivered", "chat_id", chatID)
	}

	// One run right away, then daily at the configured time.
	runReport()

	sched := scheduler.New()
	if err := sched.ScheduleDaily(cfg.Report.Hour, cfg.Report.Minute, runReport); err != nil {
		logger.Fatal("Failed to schedule daily report", "error", err)
	}
	sched.Start()

	logger.Info("Mensageiro Fit is running")
	<-ctx.Done()

	logger.Info("Shutting down...")
	<-sched.Stop().Done()
}
