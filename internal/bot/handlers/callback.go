package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	*screens
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(s *screens) *CallbackHandler {
	return &CallbackHandler{screens: s}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	chatID, userID := query.Message.Chat.ID, query.From.ID
	data := query.Data

	switch data {
	case keyboards.CallbackBack:
		h.stateManager.SetUserState(userID, state.None)
		return h.render(ctx, chatID, userID, h.deps.Router.Back(Owner(userID)))
	case keyboards.CallbackHelp:
		return menus.SendHelp(h.api, chatID)
	case keyboards.CallbackSignIn:
		return h.beginSignIn(ctx, chatID, userID)
	case keyboards.CallbackSignOut:
		return h.signOut(ctx, chatID, userID)
	case keyboards.CallbackCancel:
		return h.handleCancel(ctx, chatID, userID)
	case keyboards.CallbackSkip:
		return h.handleSkip(ctx, chatID, userID)
	case keyboards.CallbackAnalyzePhoto:
		return h.handleAnalyzePhoto(ctx, chatID, userID)
	case keyboards.CallbackAnalyzeVoice:
		return h.handleAnalyzeVoice(ctx, chatID, userID)
	case keyboards.CallbackClearTranscript:
		h.stateManager.DeleteTempData(userID, state.KeyTranscript)
		return h.refresh(ctx, chatID, userID)
	case keyboards.CallbackHistorySearch:
		h.stateManager.SetUserState(userID, state.WaitingForHistorySearch)
		return menus.SendText(h.api, chatID, "🔍 Enter a condition or remedy to search for:", keyboards.CancelMenu())
	case keyboards.CallbackRemedySearch:
		h.stateManager.SetUserState(userID, state.WaitingForRemedySearch)
		return menus.SendText(h.api, chatID, "🔍 Enter a remedy or ingredient to search for:", keyboards.CancelMenu())
	case keyboards.CallbackJournalNew:
		return h.beginJournalEntry(ctx, chatID, userID)
	}

	switch {
	case strings.HasPrefix(data, keyboards.PrefixNav):
		return h.handleNav(ctx, chatID, userID, strings.TrimPrefix(data, keyboards.PrefixNav))
	case strings.HasPrefix(data, keyboards.PrefixHistoryFilter):
		h.stateManager.SetTempData(userID, state.KeyHistoryUrgency, strings.TrimPrefix(data, keyboards.PrefixHistoryFilter))
		return h.navigate(ctx, chatID, userID, navigation.History{})
	case strings.HasPrefix(data, keyboards.PrefixHistoryDelete):
		return h.handleHistoryDelete(ctx, chatID, userID, strings.TrimPrefix(data, keyboards.PrefixHistoryDelete))
	case strings.HasPrefix(data, keyboards.PrefixJournalRate):
		rating, err := strconv.Atoi(strings.TrimPrefix(data, keyboards.PrefixJournalRate))
		if err != nil || h.stateManager.GetUserState(userID) != state.WaitingForJournalRating {
			return nil
		}
		return h.rateJournalEntry(chatID, userID, rating)
	case strings.HasPrefix(data, keyboards.PrefixJournalDelete):
		return h.handleJournalDelete(ctx, chatID, userID, strings.TrimPrefix(data, keyboards.PrefixJournalDelete))
	case strings.HasPrefix(data, keyboards.PrefixRemedyCategory):
		h.stateManager.SetTempData(userID, state.KeyRemedyCategory, strings.TrimPrefix(data, keyboards.PrefixRemedyCategory))
		return h.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageRemedies})
	case strings.HasPrefix(data, keyboards.PrefixAssistant):
		return h.handleSuggestion(chatID, strings.TrimPrefix(data, keyboards.PrefixAssistant))
	}

	logger.Warn("Unknown callback", "data", data, "user_id", userID)
	return menus.SendText(h.api, chatID, "Unknown action. Use /start to open the main menu.", nil)
}

func (h *CallbackHandler) handleNav(ctx context.Context, chatID, userID int64, name string) error {
	target, err := navigation.ParseView(name)
	if err != nil {
		logger.Warn("Invalid navigation target", "view", name, "error", err)
		return nil
	}
	h.stateManager.SetUserState(userID, state.None)
	return h.navigate(ctx, chatID, userID, target)
}

func (h *CallbackHandler) handleCancel(ctx context.Context, chatID, userID int64) error {
	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForEmail, state.WaitingForName:
		h.stateManager.DeleteTempData(userID, state.KeyEmail)
	case state.WaitingForHistorySearch:
		h.stateManager.DeleteTempData(userID, state.KeyHistorySearch)
	case state.WaitingForRemedySearch:
		h.stateManager.DeleteTempData(userID, state.KeyRemedySearch)
	}
	h.resetJournalForm(userID)
	return h.refresh(ctx, chatID, userID)
}

func (h *CallbackHandler) handleSkip(ctx context.Context, chatID, userID int64) error {
	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForName:
		return h.completeSignIn(ctx, chatID, userID, "")
	case state.WaitingForJournalMedicine:
		h.stateManager.DeleteTempData(userID, state.KeyJournalMedicine)
		h.stateManager.SetUserState(userID, state.WaitingForJournalRating)
		return menus.SendText(h.api, chatID, "⭐ How effective were they? (1-5)", keyboards.RatingMenu())
	case state.WaitingForJournalRating:
		return h.rateJournalEntry(chatID, userID, 0)
	case state.WaitingForJournalNotes:
		return h.saveJournalEntry(ctx, chatID, userID, "")
	}
	return nil
}

func (h *CallbackHandler) handleAnalyzePhoto(ctx context.Context, chatID, userID int64) error {
	preview, ok := h.stateManager.GetTempData(userID, state.KeyPhotoPreview)
	if !ok || !h.inView(userID, navigation.Upload{}) {
		return h.fail(ctx, chatID, errors.NewValidationError("Please send an image first"))
	}
	return h.startAnalysis(ctx, chatID, userID, analysisRequest{
		payload:  analysis.PhotoPayload(preview),
		consumes: state.KeyPhotoPreview,
	})
}

func (h *CallbackHandler) handleAnalyzeVoice(ctx context.Context, chatID, userID int64) error {
	transcript, _ := h.stateManager.GetTempData(userID, state.KeyTranscript)
	if !h.inView(userID, navigation.Voice{}) {
		return h.fail(ctx, chatID, errors.NewValidationError("Please open voice analysis first"))
	}
	if strings.TrimSpace(transcript) == "" {
		return h.fail(ctx, chatID, errors.NewEmptyInputError("Please record your symptoms first"))
	}
	return h.startAnalysis(ctx, chatID, userID, analysisRequest{
		payload:  analysis.VoicePayload(transcript),
		consumes: state.KeyTranscript,
	})
}

func (h *CallbackHandler) handleHistoryDelete(ctx context.Context, chatID, userID int64, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return h.fail(ctx, chatID, errors.NewValidationError("Invalid history entry"))
	}
	if err := h.deps.History.Remove(ctx, Owner(userID), id); err != nil {
		return h.fail(ctx, chatID, err)
	}
	return h.navigate(ctx, chatID, userID, navigation.History{})
}

func (h *CallbackHandler) handleJournalDelete(ctx context.Context, chatID, userID int64, id string) error {
	user, err := h.deps.Sessions.Require(ctx, Owner(userID))
	if err != nil {
		return h.fail(ctx, chatID, err)
	}
	if err := h.deps.Journal.Delete(ctx, user.ID, id); err != nil {
		return h.fail(ctx, chatID, err)
	}
	return h.navigate(ctx, chatID, userID, navigation.Dashboard{Page: navigation.PageJournal})
}

func (h *CallbackHandler) handleSuggestion(chatID int64, raw string) error {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= len(services.AssistantSuggestions) {
		return nil
	}
	reply, ok := h.deps.Assistant.Reply(services.AssistantSuggestions[i])
	if !ok {
		return nil
	}
	return menus.SendAssistantReply(h.api, chatID, reply)
}
