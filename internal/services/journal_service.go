package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/utils"
)

const (
	MinRating = 1
	MaxRating = 5
)

// JournalInput is a journal entry as submitted by the user. A zero rating
// means unrated and an empty date means today.
type JournalInput struct {
	Symptoms            string `json:"symptoms"`
	MedicinesTaken      string `json:"medicines_taken"`
	EffectivenessRating int    `json:"effectiveness_rating"`
	Notes               string `json:"notes"`
	EntryDate           string `json:"entry_date"`
}

type JournalService struct {
	repo domain.JournalRepository
	now  func() time.Time
}

func NewJournalService(repo domain.JournalRepository) *JournalService {
	return &JournalService{repo: repo, now: time.Now}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *JournalService) Create(ctx context.Context, userID string, in JournalInput) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, errors.NewUnauthenticatedError()
	}

	symptoms := strings.TrimSpace(in.Symptoms)
	if symptoms == "" {
		return nil, errors.NewValidationError("Symptoms are required")
	}

	var rating *int
	switch r := in.EffectivenessRating; {
	case r == 0:
	case r >= MinRating && r <= MaxRating:
		rating = &r
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("Effectiveness rating must be between %d and %d", MinRating, MaxRating))
	}

	entryDate := utils.Today(s.now())
	if d := strings.TrimSpace(in.EntryDate); d != "" {
		parsed, err := utils.ParseDate(d)
		if err != nil {
			return nil, errors.NewValidationError("Entry date must be YYYY-MM-DD")
		}
		entryDate = parsed
	}

	entry := &domain.JournalEntry{
		UserID:              userID,
		Symptoms:            symptoms,
		MedicinesTaken:      optional(in.MedicinesTaken),
		EffectivenessRating: rating,
		Notes:               optional(in.Notes),
		EntryDate:           entryDate,
		CreatedAt:           s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, errors.NewBackendError(err, "save journal entry")
	}

	logger.Info("Journal entry created", "user_id", userID, "entry_id", entry.ID)
	return entry, nil
}

// List returns the user's entries, latest entry date first.
func (s *JournalService) List(ctx context.Context, userID string) ([]domain.JournalEntry, error) {
	if userID == "" {
		return nil, errors.NewUnauthenticatedError()
	}
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewBackendError(err, "load journal entries")
	}
	return entries, nil
}

// Delete removes one of the user's entries by id. Callers re-list afterwards.
func (s *JournalService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return errors.NewUnauthenticatedError()
	}
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return errors.NewBackendError(err, "delete journal entry")
	}
	if !ok {
		return errors.NewNotFoundError("Journal entry")
	}
	return nil
}
