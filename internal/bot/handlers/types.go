package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/interfaces"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// FileFetcher downloads the content of a Telegram file
type FileFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Runner runs analyses off the update loop
type Runner interface {
	Go(fn func())
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Sessions  interfaces.SessionServiceInterface
	History   interfaces.HistoryServiceInterface
	Journal   interfaces.JournalServiceInterface
	Remedies  interfaces.RemedyServiceInterface
	Triage    interfaces.TriageServiceInterface
	Assistant interfaces.AssistantServiceInterface
	// Transcriber is nil when no speech backend is configured.
	Transcriber speech.Transcriber
	Router      *navigation.Router
	Files       FileFetcher
	Runner      Runner
	Errors      *errors.Handler
}

// maxVoiceBytes matches the Bot API download limit
const maxVoiceBytes = 20 << 20

// HTTPFetcher downloads files over HTTP
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes))
}

// AsyncRunner runs each function in its own goroutine and can wait for all of them
type AsyncRunner struct {
	wg sync.WaitGroup
}

func (r *AsyncRunner) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Wait blocks until every started function has returned
func (r *AsyncRunner) Wait() {
	r.wg.Wait()
}
