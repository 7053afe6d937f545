package handlers

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	*screens
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(s *screens) *CommandHandler {
	return &CommandHandler{screens: s}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID
	logger.Infof("Handling command %s from user %d", message.Command(), userID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(userID, state.None)
		return h.render(ctx, chatID, userID, h.deps.Router.Back(Owner(userID)))
	case "help":
		return menus.SendHelp(h.api, chatID)
	case "signin":
		return h.beginSignIn(ctx, chatID, userID)
	case "signout":
		return h.signOut(ctx, chatID, userID)
	case "history":
		return h.navigate(ctx, chatID, userID, navigation.History{})
	case "journal":
		return h.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageJournal})
	case "remedies":
		return h.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageRemedies})
	default:
		return menus.SendText(h.api, chatID, "Unknown command. Use /help to see the available commands.", nil)
	}
}

func (s *screens) beginSignIn(ctx context.Context, chatID, userID int64) error {
	user, err := s.deps.Sessions.Current(ctx, Owner(userID))
	if err != nil {
		return s.fail(ctx, chatID, err)
	}
	if user != nil {
		return menus.SendText(s.api, chatID, "You are already signed in as "+user.Email+".", keyboards.HomeMenu())
	}
	s.stateManager.SetUserState(userID, state.WaitingForEmail)
	return menus.SendText(s.api, chatID, "📧 Enter your email address:", keyboards.CancelMenu())
}

func (s *screens) signOut(ctx context.Context, chatID, userID int64) error {
	owner := Owner(userID)
	if err := s.deps.Sessions.SignOut(ctx, owner); err != nil {
		return s.fail(ctx, chatID, err)
	}
	s.deps.Router.Forget(owner)
	s.stateManager.SetUserState(userID, state.None)
	s.stateManager.ClearTempData(userID)

	if err := menus.SendText(s.api, chatID, "👋 You have been signed out. Your local history was cleared.", nil); err != nil {
		return err
	}
	return s.render(ctx, chatID, userID, navigation.Landing{})
}
