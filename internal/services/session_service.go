package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/storage"
	"github.com/echoremedy/echoremedy-bot/internal/utils"
	"github.com/google/uuid"
)

// SessionService keeps the locally fabricated signed-in user per owner.
// No credential is verified.
type SessionService struct {
	store   domain.KeyValueStore
	history *HistoryService
	now     func() time.Time
}

// NewSessionService keeps sessions in store; history is cleared on sign out.
func NewSessionService(store domain.KeyValueStore, history *HistoryService) *SessionService {
	return &SessionService{store: store, history: history, now: time.Now}
}

// SignIn stores a fresh session user. Name defaults to the local part of email.
func (s *SessionService) SignIn(ctx context.Context, owner, email, name string) (*domain.SessionUser, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	at := strings.Index(email, "@")
	if at <= 0 {
		return nil, errors.NewValidationError("Please enter a valid email")
	}
	if name == "" {
		name = email[:at]
	}

	user := &domain.SessionUser{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: utils.ISOTimestamp(s.now()),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, errors.NewBackendError(err, "encode session")
	}
	if err := storage.ForOwner(s.store, owner).Set(ctx, storage.KeySessionUser, string(data)); err != nil {
		return nil, errors.NewBackendError(err, "save session")
	}

	logger.Info("User signed in", "owner", owner, "user_id", user.ID)
	return user, nil
}

// Current returns the signed-in user, or nil when the owner is signed out.
// An unreadable record counts as signed out.
func (s *SessionService) Current(ctx context.Context, owner string) (*domain.SessionUser, error) {
	raw, ok, err := storage.ForOwner(s.store, owner).Get(ctx, storage.KeySessionUser)
	if err != nil {
		return nil, errors.NewBackendError(err, "read session")
	}
	if !ok {
		return nil, nil
	}

	var user domain.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Warn("Discarding unreadable session record", "owner", owner, "error", err)
		return nil, nil
	}
	return &user, nil
}

func (s *SessionService) IsAuthenticated(ctx context.Context, owner string) (bool, error) {
	user, err := s.Current(ctx, owner)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Require returns the signed-in user or an Unauthenticated error.
func (s *SessionService) Require(ctx context.Context, owner string) (*domain.SessionUser, error) {
	user, err := s.Current(ctx, owner)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewUnauthenticatedError()
	}
	return user, nil
}

// SignOut removes the session and the owner's analysis history.
func (s *SessionService) SignOut(ctx context.Context, owner string) error {
	// session first: an analysis recording after this point sees no user
	if err := storage.ForOwner(s.store, owner).Delete(ctx, storage.KeySessionUser); err != nil {
		return errors.NewBackendError(err, "clear session")
	}
	if err := s.history.Clear(ctx, owner); err != nil {
		return err
	}
	logger.Info("User signed out", "owner", owner)
	return nil
}
