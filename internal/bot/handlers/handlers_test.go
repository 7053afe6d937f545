package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	"github.com/echoremedy/echoremedy-bot/internal/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID int64 = 42

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.test/" + fileID, nil
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeAPI) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) contains(sub string) bool {
	for _, t := range f.texts() {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.requests = nil
}

type deferredRunner struct {
	fns []func()
}

func (r *deferredRunner) Go(fn func()) {
	r.fns = append(r.fns, fn)
}

func (r *deferredRunner) run() {
	fns := r.fns
	r.fns = nil
	for _, fn := range fns {
		fn()
	}
}

type memJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (m *memJournal) Create(_ context.Context, e *domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("j%d", len(m.entries)+1)
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memJournal) ListByUser(_ context.Context, userID string) ([]domain.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memJournal) Delete(_ context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id && e.UserID == userID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type staticRemedies []domain.Remedy

func (s staticRemedies) ListByCategory(context.Context) ([]domain.Remedy, error) {
	return s, nil
}

type stubTranscriber struct {
	text string
}

func (s stubTranscriber) Transcribe(context.Context, speech.Clip) (string, error) {
	return s.text, nil
}

func (stubTranscriber) Name() string { return "stub" }

type fakeFetcher struct{}

func (fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte("OggS-voice-note-bytes"), nil
}

type env struct {
	api      *fakeAPI
	handler  *UpdateHandler
	runner   *deferredRunner
	sessions *services.SessionService
	history  *services.HistoryService
	journal  *memJournal
	router   *navigation.Router
	state    *state.Manager
}

func newEnv(t *testing.T, transcriber speech.Transcriber) *env {
	t.Helper()

	store := storage.NewMemoryStore()
	history := services.NewHistoryService(store)
	sessions := services.NewSessionService(store, history)
	selector := analysis.NewMockSelector(
		analysis.WithDelays(0, 0),
		analysis.WithStrategy(analysis.FixedStrategy(0)),
	)
	journal := &memJournal{}
	remedies := staticRemedies{
		{ID: "r1", Category: "Headache", Title: "Peppermint oil", Ingredients: []string{"peppermint oil"}},
		{ID: "r2", Category: "Common Cold", Title: "Ginger tea", Ingredients: []string{"ginger", "honey"}},
	}

	e := &env{
		api:      &fakeAPI{},
		runner:   &deferredRunner{},
		sessions: sessions,
		history:  history,
		journal:  journal,
		router:   navigation.NewRouter(sessions),
		state:    state.NewManager(),
	}
	deps := Dependencies{
		Sessions:    sessions,
		History:     history,
		Journal:     services.NewJournalService(journal),
		Remedies:    services.NewRemedyService(remedies),
		Triage:      services.NewTriageService(selector, sessions, history),
		Assistant:   services.NewAssistantService(),
		Transcriber: transcriber,
		Router:      e.router,
		Files:       fakeFetcher{},
		Runner:      e.runner,
		Errors:      errors.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	e.handler = NewUpdateHandler(e.api, deps, e.state)
	return e
}

func (e *env) owner() string { return Owner(userID) }

func (e *env) signIn(t *testing.T) *domain.SessionUser {
	t.Helper()
	user, err := e.sessions.SignIn(context.Background(), e.owner(), "jane@example.com", "Jane")
	require.NoError(t, err)
	return user
}

func message(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func command(name string) tgbotapi.Update {
	u := message("/" + name)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}}
	return u
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func (e *env) handle(t *testing.T, u tgbotapi.Update) {
	t.Helper()
	require.NoError(t, e.handler.Handle(context.Background(), u))
}

func TestProtectedViewRedirectsSignedOutUser(t *testing.T) {
	e := newEnv(t, nil)

	e.handle(t, callback(keyboards.Nav(navigation.Upload{})))

	assert.True(t, e.api.contains("Sign in required"))
	assert.Contains(t, e.api.last(), "Sign in to start an analysis")
	assert.Equal(t, navigation.Landing{}, e.router.Current(e.owner()))
}

func TestSignInFlowOpensDashboard(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	e.handle(t, command("signin"))
	assert.Contains(t, e.api.last(), "Enter your email")

	e.handle(t, message("not-an-email"))
	e.handle(t, callback(keyboards.CallbackSkip))
	assert.True(t, e.api.contains("Please enter a valid email"))
	assert.Equal(t, state.WaitingForEmail, e.state.GetUserState(userID))

	e.handle(t, message("jane@example.com"))
	e.handle(t, callback(keyboards.CallbackSkip))

	user, err := e.sessions.Current(ctx, e.owner())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "jane", user.Name)
	assert.True(t, e.api.contains("Welcome, jane!"))
	assert.Equal(t, navigation.Dashboard{Page: navigation.PageOverview}, e.router.Current(e.owner()))
	assert.Equal(t, state.None, e.state.GetUserState(userID))
}

func TestPhotoAnalysisShowsResult(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Upload{})))

	photo := message("")
	photo.Message.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large", FileSize: 2048}}
	e.handle(t, photo)

	preview, ok := e.state.GetTempData(userID, state.KeyPhotoPreview)
	require.True(t, ok)
	assert.Equal(t, "tg-file:large", preview)

	doc := message("")
	doc.Message.Document = &tgbotapi.Document{FileID: "notes", FileName: "notes.txt", MimeType: "text/plain"}
	e.handle(t, doc)
	assert.Contains(t, e.api.last(), "Invalid file type")
	preview, _ = e.state.GetTempData(userID, state.KeyPhotoPreview)
	assert.Equal(t, "tg-file:large", preview, "a rejected file keeps the previous selection")

	e.handle(t, callback(keyboards.CallbackAnalyzePhoto))
	assert.Contains(t, e.api.last(), "Analyzing image")
	require.Len(t, e.runner.fns, 1)

	e.runner.run()

	e.api.mu.Lock()
	result, isPhoto := e.api.sent[len(e.api.sent)-1].(tgbotapi.PhotoConfig)
	e.api.mu.Unlock()
	require.True(t, isPhoto)
	assert.Contains(t, result.Caption, "Minor skin irritation")

	entries, err := e.history.List(context.Background(), e.owner())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tg-file:large", entries[0].ImageURL)
	assert.Equal(t, navigation.Result{EntryID: entries[0].ID}, e.router.Current(e.owner()))

	_, ok = e.state.GetTempData(userID, state.KeyPhotoPreview)
	assert.False(t, ok)
}

func TestOnlyFirstAlbumItemIsUsed(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Upload{})))

	for _, id := range []string{"first", "second"} {
		u := message("")
		u.Message.MediaGroupID = "album-1"
		u.Message.Photo = []tgbotapi.PhotoSize{{FileID: id}}
		e.handle(t, u)
	}

	preview, _ := e.state.GetTempData(userID, state.KeyPhotoPreview)
	assert.Equal(t, "tg-file:first", preview)
}

func TestPhotoOutsideUploadView(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)

	u := message("")
	u.Message.Photo = []tgbotapi.PhotoSize{{FileID: "p"}}
	e.handle(t, u)

	assert.Contains(t, e.api.last(), "Please open")
	_, ok := e.state.GetTempData(userID, state.KeyPhotoPreview)
	assert.False(t, ok)
}

func TestStaleAnalysisIsSavedButNotShown(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Voice{})))
	e.handle(t, message("I have a bad headache since morning"))

	transcript, _ := e.state.GetTempData(userID, state.KeyTranscript)
	assert.Equal(t, "I have a bad headache since morning", transcript)

	e.handle(t, callback(keyboards.CallbackAnalyzeVoice))
	e.handle(t, callback(keyboards.CallbackBack))
	e.runner.run()

	assert.Contains(t, e.api.last(), "saved to your history")
	assert.Equal(t, navigation.Landing{}, e.router.Current(e.owner()))

	entries, err := e.history.List(context.Background(), e.owner())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Headache symptoms", entries[0].Condition)
	assert.Equal(t, "I have a bad headache since morning", entries[0].VoiceInput)
}

func TestAnalysisDiscardedAfterSignOut(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Voice{})))
	e.handle(t, message("I have a bad headache since morning"))
	e.handle(t, callback(keyboards.CallbackAnalyzeVoice))
	require.Len(t, e.runner.fns, 1)

	e.handle(t, command("signout"))
	e.runner.run()

	assert.Contains(t, e.api.last(), "analysis was discarded")
	assert.False(t, e.api.contains("saved to your history"))

	_, err := e.sessions.SignIn(context.Background(), e.owner(), "sam@example.com", "Sam")
	require.NoError(t, err)
	entries, err := e.history.List(context.Background(), e.owner())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVoiceAnalysisWithoutTranscriptFailsFast(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Voice{})))

	e.handle(t, callback(keyboards.CallbackAnalyzeVoice))

	assert.Contains(t, e.api.last(), "No speech detected")
	assert.Empty(t, e.runner.fns)
}

func TestVoiceNoteIsTranscribed(t *testing.T) {
	e := newEnv(t, stubTranscriber{text: "sore throat and a dry cough"})
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Voice{})))

	u := message("")
	u.Message.Voice = &tgbotapi.Voice{FileID: "voice-1", MimeType: "audio/ogg"}
	e.handle(t, u)

	transcript, ok := e.state.GetTempData(userID, state.KeyTranscript)
	require.True(t, ok)
	assert.Equal(t, "sore throat and a dry cough", transcript)
	assert.Contains(t, e.api.last(), "sore throat and a dry cough")
}

func TestVoiceNoteWithoutTranscriber(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Voice{})))
	assert.Contains(t, e.api.last(), "Type your symptoms instead")

	u := message("")
	u.Message.Voice = &tgbotapi.Voice{FileID: "voice-1"}
	e.handle(t, u)

	assert.Contains(t, e.api.last(), "Voice input is not supported")
}

func TestHistoryFilterAndDelete(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.signIn(t)

	low, err := e.history.Record(ctx, e.owner(), domain.AnalysisResult{
		Condition: "Superficial cut", Remedy: "Clean the wound", Urgency: domain.UrgencyLow, ImageURL: "tg-file:x",
	})
	require.NoError(t, err)
	_, err = e.history.Record(ctx, e.owner(), domain.AnalysisResult{
		Condition: "Possible allergic reaction", Remedy: "Take antihistamine", Urgency: domain.UrgencyHigh, ImageURL: "tg-file:y",
	})
	require.NoError(t, err)

	e.handle(t, command("history"))
	assert.Contains(t, e.api.last(), "Superficial cut")

	e.handle(t, callback(keyboards.PrefixHistoryFilter+"High"))
	assert.NotContains(t, e.api.last(), "Superficial cut")
	assert.Contains(t, e.api.last(), "Possible allergic reaction")

	e.handle(t, callback(keyboards.PrefixHistoryFilter+services.UrgencyAll))
	e.handle(t, callback(keyboards.PrefixHistoryDelete+strconv.FormatInt(low.ID, 10)))
	assert.NotContains(t, e.api.last(), "Superficial cut")

	e.handle(t, callback(keyboards.PrefixHistoryDelete+strconv.FormatInt(low.ID, 10)))
	assert.True(t, e.api.contains("Not found"))
}

func TestJournalFlow(t *testing.T) {
	e := newEnv(t, nil)
	user := e.signIn(t)

	e.handle(t, command("journal"))
	assert.Contains(t, e.api.last(), "No entries yet")

	e.handle(t, callback(keyboards.CallbackJournalNew))
	e.handle(t, message("tension headache"))
	e.handle(t, callback(keyboards.CallbackSkip))
	e.handle(t, callback(keyboards.PrefixJournalRate+"4"))
	e.handle(t, message("better after a nap"))

	require.Len(t, e.journal.entries, 1)
	entry := e.journal.entries[0]
	assert.Equal(t, user.ID, entry.UserID)
	assert.Equal(t, "tension headache", entry.Symptoms)
	assert.Nil(t, entry.MedicinesTaken)
	require.NotNil(t, entry.EffectivenessRating)
	assert.Equal(t, 4, *entry.EffectivenessRating)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "better after a nap", *entry.Notes)

	assert.Equal(t, state.None, e.state.GetUserState(userID))
	assert.Contains(t, e.api.last(), "tension headache")

	e.handle(t, callback(keyboards.PrefixJournalDelete+entry.ID))
	assert.Empty(t, e.journal.entries)
}

func TestJournalRequiresSignIn(t *testing.T) {
	e := newEnv(t, nil)

	e.handle(t, callback(keyboards.CallbackJournalNew))

	assert.Contains(t, e.api.last(), "Sign in required")
	assert.Equal(t, state.None, e.state.GetUserState(userID))
}

func TestRemediesCategoryAndSearch(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)

	e.handle(t, command("remedies"))
	assert.Contains(t, e.api.last(), "Peppermint oil")
	assert.Contains(t, e.api.last(), "Ginger tea")

	e.handle(t, callback(keyboards.PrefixRemedyCategory+"Headache"))
	assert.Contains(t, e.api.last(), "Peppermint oil")
	assert.NotContains(t, e.api.last(), "Ginger tea")

	e.handle(t, callback(keyboards.PrefixRemedyCategory+services.CategoryAll))
	e.handle(t, callback(keyboards.CallbackRemedySearch))
	e.handle(t, message("HONEY"))
	assert.Contains(t, e.api.last(), "Ginger tea")
	assert.NotContains(t, e.api.last(), "Peppermint oil")
}

func TestAssistantReplies(t *testing.T) {
	e := newEnv(t, nil)
	e.signIn(t)
	e.handle(t, callback(keyboards.Nav(navigation.Dashboard{Page: navigation.PageAssistant})))
	assert.Contains(t, e.api.last(), "Medixo")

	e.handle(t, message("I think I have a fever"))
	assert.Contains(t, e.api.last(), "For fever management")

	e.handle(t, callback(keyboards.PrefixAssistant+"0"))
	assert.Contains(t, e.api.last(), "For headaches")
}

func TestSignOutClearsSessionAndHistory(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.signIn(t)
	_, err := e.history.Record(ctx, e.owner(), domain.AnalysisResult{Condition: "Superficial cut", Urgency: domain.UrgencyLow, ImageURL: "tg-file:x"})
	require.NoError(t, err)
	e.handle(t, callback(keyboards.Nav(navigation.Upload{})))

	e.api.reset()
	e.handle(t, callback(keyboards.CallbackSignOut))

	user, err := e.sessions.Current(ctx, e.owner())
	require.NoError(t, err)
	assert.Nil(t, user)
	entries, err := e.history.List(ctx, e.owner())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, navigation.Landing{}, e.router.Current(e.owner()))
	assert.True(t, e.api.contains("signed out"))
}

func TestCallbackIsAnswered(t *testing.T) {
	e := newEnv(t, nil)

	e.handle(t, callback(keyboards.CallbackHelp))

	e.api.mu.Lock()
	defer e.api.mu.Unlock()
	require.NotEmpty(t, e.api.requests)
	_, ok := e.api.requests[0].(tgbotapi.CallbackConfig)
	assert.True(t, ok)
}
