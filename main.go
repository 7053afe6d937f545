package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/api"
	"github.com/echoremedy/echoremedy-bot/internal/bot"
	"github.com/echoremedy/echoremedy-bot/internal/bot/handlers"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/config"
	"github.com/echoremedy/echoremedy-bot/internal/database"
	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/repository"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	"github.com/echoremedy/echoremedy-bot/internal/storage"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	defer logger.Close()
	logger.Info("Starting EchoRemedy...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Local persisted state lives in Redis when configured, in memory otherwise.
	var (
		store        domain.KeyValueStore
		stateManager state.StateManager
	)
	if cfg.Redis.Enabled() {
		rs, err := storage.NewRedisStore(ctx, storage.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer rs.Close()
		store = rs
		stateManager = state.NewRedisManager(rs.Client())
	} else {
		store = storage.NewMemoryStore()
		stateManager = state.NewManager()
	}

	history := services.NewHistoryService(store)
	sessions := services.NewSessionService(store, history)
	selector := analysis.NewMockSelector(analysis.WithDelays(cfg.Analysis.PhotoDelay, cfg.Analysis.VoiceDelay))
	journal := services.NewJournalService(repository.NewJournalRepository(db))
	remedies := services.NewRemedyService(repository.NewRemedyRepository(db))
	triage := services.NewTriageService(selector, sessions, history)
	assistant := services.NewAssistantService()
	errHandler := errors.NewHandler(logger.GetLogger())

	transcriber, closeTranscriber := newTranscriber(ctx, cfg)
	defer closeTranscriber()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Sessions:    sessions,
			History:     history,
			Journal:     journal,
			Remedies:    remedies,
			Triage:      triage,
			Assistant:   assistant,
			Transcriber: transcriber,
			Router:      navigation.NewRouter(sessions),
			Errors:      errHandler,
		}, stateManager)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}
		g.Go(func() error {
			return telegramBot.Start(gctx)
		})
	}

	if cfg.HTTPAddr != "" {
		server, err := api.NewServer(api.Dependencies{
			Sessions:    sessions,
			History:     history,
			Journal:     journal,
			Remedies:    remedies,
			Triage:      triage,
			Assistant:   assistant,
			Transcriber: transcriber,
			Errors:      errHandler,
		}, cfg.UploadDir)
		if err != nil {
			logger.Fatal("Failed to create HTTP server", "error", err)
		}
		g.Go(func() error {
			return server.Run(gctx, cfg.HTTPAddr)
		})
	}

	logger.Info("EchoRemedy is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Error("Stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("EchoRemedy stopped")
}

// newTranscriber chains the configured speech backends, Gemini first.
// It returns a nil Transcriber when no key is set so that voice input is
// reported as unsupported.
func newTranscriber(ctx context.Context, cfg *config.Config) (speech.Transcriber, func()) {
	var backends []speech.Transcriber
	closeFn := func() {}

	if cfg.GeminiAPIKey != "" {
		gemini, err := speech.NewGeminiTranscriber(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("Gemini transcriber unavailable", "error", err)
		} else {
			backends = append(backends, gemini)
			closeFn = func() {
				if err := gemini.Close(); err != nil {
					logger.Warn("Failed to close Gemini client", "error", err)
				}
			}
		}
	}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, speech.NewWhisperTranscriber(cfg.OpenAIAPIKey))
	}

	fallback := speech.NewFallbackTranscriber(backends...)
	if fallback.Empty() {
		logger.Warn("No speech backend configured, voice input disabled")
		return nil, closeFn
	}
	return fallback, closeFn
}
