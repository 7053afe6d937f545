package handlers

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             BotAPI
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
	voiceHandler    *VoiceHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	s := &screens{api: api, deps: deps, stateManager: stateManager}
	return &UpdateHandler{
		api:             api,
		callbackHandler: NewCallbackHandler(s),
		commandHandler:  NewCommandHandler(s),
		textHandler:     NewTextHandler(s),
		photoHandler:    NewPhotoHandler(s),
		voiceHandler:    NewVoiceHandler(s),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		query := update.CallbackQuery
		// Answer the callback query first to stop the loading indicator
		if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			logger.Warn("Failed to answer callback query", "error", err)
		}
		if query.Message == nil || query.From == nil {
			return nil
		}
		return h.callbackHandler.Handle(ctx, query)
	}

	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}

	switch {
	case message.IsCommand():
		return h.commandHandler.Handle(ctx, message)
	case len(message.Photo) > 0 || message.Document != nil:
		return h.photoHandler.Handle(ctx, message)
	case message.Voice != nil || message.Audio != nil:
		return h.voiceHandler.Handle(ctx, message)
	case message.Text != "":
		return h.textHandler.Handle(ctx, message)
	}
	return nil
}
