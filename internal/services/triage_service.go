package services

import (
	"context"
	stderrors "errors"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
)

// ErrSessionEnded is returned when the owner signed out while an analysis
// was running. Nothing is recorded.
var ErrSessionEnded = errors.New(errors.ErrorTypePermission, errors.CodeUnauthenticated, "Signed out before the analysis finished")

// TriageService runs a payload through the selector and records the result.
type TriageService struct {
	selector analysis.Selector
	sessions *SessionService
	history  *HistoryService
}

func NewTriageService(selector analysis.Selector, sessions *SessionService, history *HistoryService) *TriageService {
	return &TriageService{selector: selector, sessions: sessions, history: history}
}

// Analyze requires a signed-in owner. The result is recorded only if the
// same session is still signed in when the selector returns.
func (s *TriageService) Analyze(ctx context.Context, owner string, p analysis.Payload) (domain.HistoryEntry, error) {
	user, err := s.sessions.Require(ctx, owner)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	result, err := s.selector.Analyze(ctx, p)
	if err != nil {
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			err = errors.NewAnalysisFailedError(err)
		}
		return domain.HistoryEntry{}, err
	}

	entry, err := s.history.recordIf(ctx, owner, result, func(ctx context.Context) error {
		current, err := s.sessions.Current(ctx, owner)
		if err != nil {
			return err
		}
		if current == nil || current.ID != user.ID {
			logger.Info("Discarding analysis of ended session", "owner", owner, "user_id", user.ID)
			return ErrSessionEnded
		}
		return nil
	})
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	logger.Info("Analysis recorded",
		"owner", owner,
		"modality", p.Modality,
		"entry_id", entry.ID,
		"urgency", entry.Urgency)
	return entry, nil
}
