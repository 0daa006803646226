package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicvoice/backend/internal/api/handler"
	"civicvoice/backend/internal/app"
	"civicvoice/backend/internal/auth"
	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/contact"
	"civicvoice/backend/internal/escalation"
	"civicvoice/backend/internal/feed"
	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/localization"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/notify"
	"civicvoice/backend/internal/petition"
	"civicvoice/backend/internal/prompts"
	"civicvoice/backend/internal/search"
	"civicvoice/backend/internal/speech"
	"civicvoice/backend/internal/storage"
	"civicvoice/backend/internal/vector"
	"civicvoice/backend/internal/wiki"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			return nil, nil, err
		}
	}

	slog.Info("database and redis connections established")
	return db, rdb, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	app.NewLogger(cfg.Log)

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting civicvoice backend", "env", cfg.Env, "port", cfg.Server.Port)

	db, rdb, err := setupDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	s := storage.NewStorageService(db, rdb)
	m := metrics.New(cfg.Metrics)

	l, err := localization.New()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	catalogue := prompts.Default()
	if cfg.LLM.PromptsPath != "" {
		if catalogue, err = prompts.Load(cfg.LLM.PromptsPath); err != nil {
			return fmt.Errorf("load prompts: %w", err)
		}
	}

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("init llm: %w", err)
	}

	complaints := complaint.NewService(s, s, m)
	petitions := petition.NewService(llmClient, catalogue)

	h := &handler.Handler{
		Complaints:     complaints,
		Petitions:      petitions,
		JWT:            auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL),
		Metrics:        m,
		Production:     cfg.IsProduction(),
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		UploadDir:      cfg.Server.UploadDir,
	}

	h.Contacts = contact.NewAgent(search.NewClient(cfg.Search), llmClient, catalogue, m)
	if cfg.Sarvam.APIKey != "" {
		h.Speech = speech.NewClient(cfg.Sarvam)
	} else {
		slog.Warn("sarvam api key not set, voice routes disabled")
	}

	var index wiki.Index
	if cfg.Vector.IndexHost != "" {
		index = vector.NewClient(cfg.Vector)
	} else {
		slog.Warn("vector index not configured, wiki search disabled")
	}
	h.Wiki = wiki.NewService(s, embedder, index)

	var sms notify.SMSSender = notify.LogSMSSender{}
	if twilio := notify.NewTwilioClient(cfg.SMS); twilio.Enabled() {
		sms = twilio
	} else if cfg.IsProduction() {
		slog.Warn("twilio not configured, otp codes will only be logged")
	}
	h.OTP = auth.NewOTPService(s, s, sms, l, h.JWT, cfg.OTP.TTL)

	if resend := notify.NewResendClient(cfg.Email); resend.Enabled() {
		h.Mailer = notify.NewPetitionMailer(resend, s, l)
	}

	var notifier escalation.Notifier
	bot, err := notify.NewTelegramBot(cfg.Telegram)
	if err != nil {
		slog.Warn("telegram notifications disabled", "error", err)
	}
	if bot != nil {
		tg := notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, l, cfg.OTP.Language)
		tg.Run()
		defer tg.Close()
		notifier = tg
	}

	if cfg.Escalation.Enabled {
		sweeper := escalation.NewSweeper(s, s, notifier, m)
		scheduler, err := escalation.NewScheduler(cfg.Escalation, sweeper, s)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
		h.Escalation = scheduler
	}

	hub := feed.NewHub(s)
	go hub.Run(ctx)
	h.Hub = hub

	if h.Images, err = handler.NewLocalImageStore(cfg.Server.UploadDir); err != nil {
		return err
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        h.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
