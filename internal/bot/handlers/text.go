package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TextHandler handles text messages
type TextHandler struct {
	*screens
}

// NewTextHandler creates a new text handler
func NewTextHandler(s *screens) *TextHandler {
	return &TextHandler{screens: s}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForEmail:
		h.stateManager.SetTempData(userID, state.KeyEmail, text)
		h.stateManager.SetUserState(userID, state.WaitingForName)
		return menus.SendText(h.api, chatID, "👤 Enter your name, or press Skip to use the part of your email before @.", keyboards.SkipMenu())

	case state.WaitingForName:
		return h.completeSignIn(ctx, chatID, userID, text)

	case state.WaitingForHistorySearch:
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.SetTempData(userID, state.KeyHistorySearch, text)
		return h.navigate(ctx, chatID, userID, navigation.History{})

	case state.WaitingForRemedySearch:
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.SetTempData(userID, state.KeyRemedySearch, text)
		return h.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageRemedies})

	case state.WaitingForJournalSymptoms:
		h.stateManager.SetTempData(userID, state.KeyJournalSymptoms, text)
		h.stateManager.SetUserState(userID, state.WaitingForJournalMedicine)
		return menus.SendText(h.api, chatID, "💊 Which medicines did you take?", keyboards.SkipMenu())

	case state.WaitingForJournalMedicine:
		h.stateManager.SetTempData(userID, state.KeyJournalMedicine, text)
		h.stateManager.SetUserState(userID, state.WaitingForJournalRating)
		return menus.SendText(h.api, chatID, "⭐ How effective were they? (1-5)", keyboards.RatingMenu())

	case state.WaitingForJournalRating:
		rating, err := strconv.Atoi(text)
		if err != nil || rating < services.MinRating || rating > services.MaxRating {
			return menus.SendText(h.api, chatID, "Please choose a rating from 1 to 5.", keyboards.RatingMenu())
		}
		return h.rateJournalEntry(chatID, userID, rating)

	case state.WaitingForJournalNotes:
		return h.saveJournalEntry(ctx, chatID, userID, text)
	}

	return h.handleDefaultText(ctx, chatID, userID, text)
}

// handleDefaultText interprets free text by the current view
func (h *TextHandler) handleDefaultText(ctx context.Context, chatID, userID int64, text string) error {
	switch v := h.deps.Router.Current(Owner(userID)).(type) {
	case navigation.Voice:
		h.stateManager.SetTempData(userID, state.KeyTranscript, text)
		return menus.SendTranscript(h.api, chatID, text)

	case navigation.Dashboard:
		if v.Page == navigation.PageAssistant {
			reply, ok := h.deps.Assistant.Reply(text)
			if !ok {
				return nil
			}
			return menus.SendAssistantReply(h.api, chatID, reply)
		}
	}
	return menus.SendText(h.api, chatID, "Please use the menu buttons. Send /help to see what I can do.", nil)
}

func (s *screens) completeSignIn(ctx context.Context, chatID, userID int64, name string) error {
	owner := Owner(userID)
	email, _ := s.stateManager.GetTempData(userID, state.KeyEmail)

	user, err := s.deps.Sessions.SignIn(ctx, owner, email, name)
	if err != nil {
		s.stateManager.DeleteTempData(userID, state.KeyEmail)
		s.stateManager.SetUserState(userID, state.WaitingForEmail)
		if ferr := s.fail(ctx, chatID, err); ferr != nil {
			return ferr
		}
		return menus.SendText(s.api, chatID, "📧 Enter your email address:", keyboards.CancelMenu())
	}

	s.stateManager.DeleteTempData(userID, state.KeyEmail)
	s.stateManager.SetUserState(userID, state.None)

	if err := menus.SendText(s.api, chatID, "✅ Welcome, "+user.Name+"!", nil); err != nil {
		return err
	}
	return s.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageOverview})
}

func (s *screens) beginJournalEntry(ctx context.Context, chatID, userID int64) error {
	if _, err := s.deps.Sessions.Require(ctx, Owner(userID)); err != nil {
		return s.fail(ctx, chatID, err)
	}
	s.resetJournalForm(userID)
	s.stateManager.SetUserState(userID, state.WaitingForJournalSymptoms)
	return menus.SendText(s.api, chatID, "🤒 Describe your symptoms:", keyboards.CancelMenu())
}

// rateJournalEntry stores the rating; zero means unrated
func (s *screens) rateJournalEntry(chatID, userID int64, rating int) error {
	s.stateManager.SetTempData(userID, state.KeyJournalRating, strconv.Itoa(rating))
	s.stateManager.SetUserState(userID, state.WaitingForJournalNotes)
	return menus.SendText(s.api, chatID, "📝 Any notes?", keyboards.SkipMenu())
}

func (s *screens) saveJournalEntry(ctx context.Context, chatID, userID int64, notes string) error {
	defer s.resetJournalForm(userID)

	user, err := s.deps.Sessions.Require(ctx, Owner(userID))
	if err != nil {
		return s.fail(ctx, chatID, err)
	}

	symptoms, _ := s.stateManager.GetTempData(userID, state.KeyJournalSymptoms)
	medicine, _ := s.stateManager.GetTempData(userID, state.KeyJournalMedicine)
	raw, _ := s.stateManager.GetTempData(userID, state.KeyJournalRating)
	rating, _ := strconv.Atoi(raw)

	entry, err := s.deps.Journal.Create(ctx, user.ID, services.JournalInput{
		Symptoms:            symptoms,
		MedicinesTaken:      medicine,
		EffectivenessRating: rating,
		Notes:               notes,
	})
	if err != nil {
		return s.fail(ctx, chatID, err)
	}
	logger.Info("Journal entry saved", "user_id", user.ID, "entry_id", entry.ID)

	if err := menus.SendText(s.api, chatID, "✅ Journal entry saved.", nil); err != nil {
		return err
	}
	return s.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageJournal})
}

func (s *screens) resetJournalForm(userID int64) {
	s.stateManager.SetUserState(userID, state.None)
	for _, key := range []string{state.KeyJournalSymptoms, state.KeyJournalMedicine, state.KeyJournalRating} {
		s.stateManager.DeleteTempData(userID, key)
	}
}
