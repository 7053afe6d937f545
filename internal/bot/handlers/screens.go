package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const analysisTimeout = 2 * time.Minute

// Owner returns the storage owner of a Telegram user
func Owner(userID int64) string {
	return "tg:" + strconv.FormatInt(userID, 10)
}

// screens renders views and reports failures; every handler shares one
type screens struct {
	api          BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// fail logs err and shows its notification
func (s *screens) fail(ctx context.Context, chatID int64, err error) error {
	if s.deps.Errors != nil {
		s.deps.Errors.Handle(ctx, err)
	}
	return menus.SendNotification(s.api, chatID, errors.UserMessage(err))
}

// navigate moves the user to target and renders whatever view ends up current
func (s *screens) navigate(ctx context.Context, chatID, userID int64, target navigation.View) error {
	owner := Owner(userID)
	v, err := s.deps.Router.Navigate(ctx, owner, target)
	if err != nil {
		if nerr := s.fail(ctx, chatID, err); nerr != nil {
			return nerr
		}
		if stderrors.Is(err, errors.ErrUnauthenticated) {
			return s.render(ctx, chatID, userID, v)
		}
		return nil
	}
	return s.render(ctx, chatID, userID, v)
}

// refresh re-renders the current view
func (s *screens) refresh(ctx context.Context, chatID, userID int64) error {
	return s.render(ctx, chatID, userID, s.deps.Router.Current(Owner(userID)))
}

func (s *screens) render(ctx context.Context, chatID, userID int64, v navigation.View) error {
	owner := Owner(userID)

	switch v := v.(type) {
	case navigation.Landing:
		user, err := s.deps.Sessions.Current(ctx, owner)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendLanding(s.api, chatID, user)

	case navigation.Home:
		user, err := s.deps.Sessions.Current(ctx, owner)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendHome(s.api, chatID, user)

	case navigation.Upload:
		_, ready := s.stateManager.GetTempData(userID, state.KeyPhotoPreview)
		return menus.SendUploadPrompt(s.api, chatID, ready)

	case navigation.Voice:
		transcript, _ := s.stateManager.GetTempData(userID, state.KeyTranscript)
		return menus.SendVoicePrompt(s.api, chatID, s.deps.Transcriber != nil, transcript)

	case navigation.History:
		f := s.historyFilter(userID)
		entries, err := s.deps.History.Query(ctx, owner, f)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendHistory(s.api, chatID, entries, f)

	case navigation.Result:
		entry, err := s.deps.History.Get(ctx, owner, v.EntryID)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendResult(s.api, chatID, entry)

	case navigation.Dashboard:
		return s.renderDashboard(ctx, chatID, userID, v.Page)
	}

	return fmt.Errorf("unhandled view %s", v.Name())
}

func (s *screens) renderDashboard(ctx context.Context, chatID, userID int64, page navigation.Page) error {
	owner := Owner(userID)

	switch page {
	case navigation.PageRemedies:
		category, ok := s.stateManager.GetTempData(userID, state.KeyRemedyCategory)
		if !ok {
			category = services.CategoryAll
		}
		search, _ := s.stateManager.GetTempData(userID, state.KeyRemedySearch)
		remedies, err := s.deps.Remedies.Filter(ctx, category, search)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendRemedies(s.api, chatID, s.deps.Remedies.Categories(), remedies, category, search)

	case navigation.PageJournal:
		user, err := s.deps.Sessions.Require(ctx, owner)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		entries, err := s.deps.Journal.List(ctx, user.ID)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendJournal(s.api, chatID, entries)

	case navigation.PageAssistant:
		return menus.SendAssistant(s.api, chatID)

	default:
		user, err := s.deps.Sessions.Current(ctx, owner)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		stats, err := s.deps.History.Stats(ctx, owner)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		recent, err := s.deps.History.Recent(ctx, owner, services.RecentLimit)
		if err != nil {
			return s.fail(ctx, chatID, err)
		}
		return menus.SendDashboard(s.api, chatID, user, stats, recent)
	}
}

func (s *screens) historyFilter(userID int64) services.HistoryFilter {
	search, _ := s.stateManager.GetTempData(userID, state.KeyHistorySearch)
	urgency, ok := s.stateManager.GetTempData(userID, state.KeyHistoryUrgency)
	if !ok {
		urgency = services.UrgencyAll
	}
	return services.HistoryFilter{Search: search, Urgency: urgency}
}

// inView reports whether the user currently looks at a view of the same kind as v
func (s *screens) inView(userID int64, v navigation.View) bool {
	return s.deps.Router.Current(Owner(userID)).Name() == v.Name()
}

// startAnalysis runs p off the update loop. The result is shown only if the
// user has not navigated since; it is recorded in history either way.
func (s *screens) startAnalysis(ctx context.Context, chatID, userID int64, p analysisRequest) error {
	owner := Owner(userID)
	if _, err := s.deps.Sessions.Require(ctx, owner); err != nil {
		return s.fail(ctx, chatID, err)
	}

	progress, err := menus.SendAnalyzing(s.api, chatID, p.payload.Modality)
	if err != nil {
		return fmt.Errorf("failed to send progress message: %w", err)
	}

	ticket := s.deps.Router.BeginAnalysis(owner)
	logger.Info("Analysis started", "owner", owner, "modality", p.payload.Modality)

	s.deps.Runner.Go(func() {
		actx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		entry, err := s.deps.Triage.Analyze(actx, owner, p.payload)

		if _, derr := s.api.Request(tgbotapi.NewDeleteMessage(chatID, progress.MessageID)); derr != nil {
			logger.Debug("Failed to delete progress message", "error", derr)
		}

		if stderrors.Is(err, services.ErrSessionEnded) {
			if serr := menus.SendText(s.api, chatID, "🗑 You signed out, so the running analysis was discarded.", nil); serr != nil {
				logger.Error("Failed to send discard notice", "owner", owner, "error", serr)
			}
			return
		}
		if err != nil {
			if ferr := s.fail(actx, chatID, err); ferr != nil {
				logger.Error("Failed to send analysis error", "owner", owner, "error", ferr)
			}
			return
		}

		s.stateManager.DeleteTempData(userID, p.consumes)

		if _, ok := s.deps.Router.CompleteAnalysis(ticket, entry.ID); ok {
			err = menus.SendResult(s.api, chatID, entry)
		} else {
			err = menus.SendText(s.api, chatID, "✅ Your analysis finished and was saved to your history.", nil)
		}
		if err != nil {
			logger.Error("Failed to send analysis result", "owner", owner, "error", err)
		}
	})
	return nil
}

// analysisRequest is a payload plus the temp key holding its input, cleared on success
type analysisRequest struct {
	payload  analysis.Payload
	consumes string
}
