package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/bot/handlers"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot polls Telegram and hands every update to the handlers
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
	runner  handlers.Runner
}

// NewBot authorizes the token and wires the handlers. Runner and Files are
// filled in when deps leaves them empty.
func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot authorized", "account", api.Self.UserName)

	deps = withDefaults(deps)
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps, stateManager),
		runner:  deps.Runner,
	}, nil
}

func withDefaults(deps handlers.Dependencies) handlers.Dependencies {
	if deps.Runner == nil {
		deps.Runner = &handlers.AsyncRunner{}
	}
	if deps.Files == nil {
		deps.Files = handlers.NewHTTPFetcher(30 * time.Second)
	}
	return deps
}

// waitRunner blocks until background work finishes, when the runner can tell
func waitRunner(r handlers.Runner) {
	if w, ok := r.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// Start polls for updates until ctx is cancelled, then waits for running analyses
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down...")
			b.api.StopReceivingUpdates()
			waitRunner(b.runner)
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				waitRunner(b.runner)
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				logger.Debug("Received message", "user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)
			}
			if err := b.handler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
