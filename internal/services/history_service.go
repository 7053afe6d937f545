package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/storage"
	"github.com/echoremedy/echoremedy-bot/internal/utils"
)

// UrgencyAll disables the urgency filter.
const UrgencyAll = "all"

// RecentLimit is how many entries the recent view shows.
const RecentLimit = 3

// HistoryFilter narrows a history query. Both predicates must hold.
type HistoryFilter struct {
	Search  string
	Urgency string
}

// HistoryService is the newest-first record of completed analyses,
// persisted as one JSON document per owner.
type HistoryService struct {
	store domain.KeyValueStore
	now   func() time.Time

	// serializes read-modify-write of the document
	mu sync.Mutex
}

func NewHistoryService(store domain.KeyValueStore) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

func (s *HistoryService) load(ctx context.Context, owner string) ([]domain.HistoryEntry, error) {
	raw, ok, err := storage.ForOwner(s.store, owner).Get(ctx, storage.KeyHistory)
	if err != nil {
		return nil, errors.NewBackendError(err, "read history")
	}
	if !ok || raw == "" {
		return []domain.HistoryEntry{}, nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.NewBackendError(err, "decode history")
	}
	return entries, nil
}

func (s *HistoryService) save(ctx context.Context, owner string, entries []domain.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.NewBackendError(err, "encode history")
	}
	if err := storage.ForOwner(s.store, owner).Set(ctx, storage.KeyHistory, string(data)); err != nil {
		return errors.NewBackendError(err, "save history")
	}
	return nil
}

// Record prepends result stamped with its creation time. IDs are Unix
// milliseconds, bumped past the newest entry when the clock has not advanced.
func (s *HistoryService) Record(ctx context.Context, owner string, result domain.AnalysisResult) (domain.HistoryEntry, error) {
	return s.recordIf(ctx, owner, result, nil)
}

// recordIf is Record with guard checked under the history lock, so a
// concurrent Clear either wipes the entry or makes the guard fail.
func (s *HistoryService) recordIf(ctx context.Context, owner string, result domain.AnalysisResult, guard func(context.Context) error) (domain.HistoryEntry, error) {
	if !result.Urgency.Valid() {
		return domain.HistoryEntry{}, errors.NewAnalysisFailedError(fmt.Errorf("unknown urgency %q", result.Urgency))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if guard != nil {
		if err := guard(ctx); err != nil {
			return domain.HistoryEntry{}, err
		}
	}

	entries, err := s.load(ctx, owner)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	now := s.now()
	id := now.UnixMilli()
	if len(entries) > 0 && id <= entries[0].ID {
		id = entries[0].ID + 1
	}

	entry := domain.HistoryEntry{
		ID:             id,
		Date:           utils.ISOTimestamp(now),
		AnalysisResult: result,
	}
	entries = append([]domain.HistoryEntry{entry}, entries...)

	if err := s.save(ctx, owner, entries); err != nil {
		return domain.HistoryEntry{}, err
	}
	return entry, nil
}

// Query returns entries whose condition or remedy contains the search term,
// ignoring case, and whose urgency matches the filter unless it is "all".
func (s *HistoryService) Query(ctx context.Context, owner string, f HistoryFilter) ([]domain.HistoryEntry, error) {
	var tier domain.Urgency
	if f.Urgency != "" && !strings.EqualFold(f.Urgency, UrgencyAll) {
		u, err := domain.ParseUrgency(f.Urgency)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		tier = u
	}

	entries, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(f.Search)
	matched := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Condition), term) &&
			!strings.Contains(strings.ToLower(e.Remedy), term) {
			continue
		}
		if tier != "" && e.Urgency != tier {
			continue
		}
		matched = append(matched, e)
	}
	return matched, nil
}

// List returns every entry, newest first.
func (s *HistoryService) List(ctx context.Context, owner string) ([]domain.HistoryEntry, error) {
	return s.load(ctx, owner)
}

// Get finds one entry by id.
func (s *HistoryService) Get(ctx context.Context, owner string, id int64) (domain.HistoryEntry, error) {
	entries, err := s.load(ctx, owner)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, errors.NewNotFoundError("History entry")
}

// Remove deletes exactly the entry with id.
func (s *HistoryService) Remove(ctx context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx, owner)
	if err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return errors.NewNotFoundError("History entry")
	}
	return s.save(ctx, owner, kept)
}

// Recent returns up to n newest entries.
func (s *HistoryService) Recent(ctx context.Context, owner string, n int) ([]domain.HistoryEntry, error) {
	entries, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Stats counts entries per urgency tier.
func (s *HistoryService) Stats(ctx context.Context, owner string) (domain.UrgencyStats, error) {
	entries, err := s.load(ctx, owner)
	if err != nil {
		return domain.UrgencyStats{}, err
	}

	var stats domain.UrgencyStats
	for _, e := range entries {
		switch e.Urgency {
		case domain.UrgencyHigh:
			stats.High++
		case domain.UrgencyMedium:
			stats.Medium++
		case domain.UrgencyLow:
			stats.Low++
		}
	}
	return stats, nil
}

// Clear drops the owner's whole history.
func (s *HistoryService) Clear(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.ForOwner(s.store, owner).Delete(ctx, storage.KeyHistory); err != nil {
		return errors.NewBackendError(err, "clear history")
	}
	return nil
}
