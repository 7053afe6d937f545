package interfaces

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/services"
)

// SessionServiceInterface defines the contract for sign in and sign out
type SessionServiceInterface interface {
	SignIn(ctx context.Context, owner, email, name string) (*domain.SessionUser, error)
	Current(ctx context.Context, owner string) (*domain.SessionUser, error)
	Require(ctx context.Context, owner string) (*domain.SessionUser, error)
	SignOut(ctx context.Context, owner string) error
}

// HistoryServiceInterface defines the contract for reading analysis history
type HistoryServiceInterface interface {
	Query(ctx context.Context, owner string, f services.HistoryFilter) ([]domain.HistoryEntry, error)
	Get(ctx context.Context, owner string, id int64) (domain.HistoryEntry, error)
	Remove(ctx context.Context, owner string, id int64) error
	Recent(ctx context.Context, owner string, n int) ([]domain.HistoryEntry, error)
	Stats(ctx context.Context, owner string) (domain.UrgencyStats, error)
}

// JournalServiceInterface defines the contract for journal operations
type JournalServiceInterface interface {
	Create(ctx context.Context, userID string, in services.JournalInput) (*domain.JournalEntry, error)
	List(ctx context.Context, userID string) ([]domain.JournalEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

// RemedyServiceInterface defines the contract for browsing home remedies
type RemedyServiceInterface interface {
	Categories() []string
	Filter(ctx context.Context, category, search string) ([]domain.Remedy, error)
}

// TriageServiceInterface defines the contract for running an analysis
type TriageServiceInterface interface {
	Analyze(ctx context.Context, owner string, p analysis.Payload) (domain.HistoryEntry, error)
}

// AssistantServiceInterface defines the contract for the chat assistant
type AssistantServiceInterface interface {
	Reply(message string) (string, bool)
}
