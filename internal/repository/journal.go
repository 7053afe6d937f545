package repository

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JournalRepository stores journal entries in the relational backend
type JournalRepository struct {
	db *gorm.DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create inserts the entry, assigning an ID when it has none.
func (r *JournalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser returns the user's entries, most recent entry date first.
func (r *JournalRepository) ListByUser(ctx context.Context, userID string) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("entry_date DESC").
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes one of the user's entries by ID and reports whether a row matched.
func (r *JournalRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.JournalEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
