package domain

import (
	"context"
)

// KeyValueStore is the synchronous text store behind the local persisted state.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// JournalRepository persists journal entries in the remote store.
type JournalRepository interface {
	Create(ctx context.Context, entry *JournalEntry) error
	ListByUser(ctx context.Context, userID string) ([]JournalEntry, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// RemedyRepository lists the remote remedy catalog.
type RemedyRepository interface {
	ListByCategory(ctx context.Context) ([]Remedy, error)
}
