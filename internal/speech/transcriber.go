// Package speech provides speech-recognition collaborators for recorded audio.
package speech

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/logger"
)

// Clip is a recorded piece of audio, such as a voice note.
type Clip struct {
	Name      string
	MediaType string
	Data      []byte
}

// Transcriber turns a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
	Name() string
}

// ErrNoTranscriber is returned when no speech backend is configured.
var ErrNoTranscriber = stderrors.New("no speech backend configured")

// FallbackTranscriber tries each backend in order until one succeeds.
type FallbackTranscriber struct {
	backends []Transcriber
}

func NewFallbackTranscriber(backends ...Transcriber) *FallbackTranscriber {
	var usable []Transcriber
	for _, b := range backends {
		if b != nil {
			usable = append(usable, b)
		}
	}
	return &FallbackTranscriber{backends: usable}
}

func (f *FallbackTranscriber) Name() string {
	names := make([]string, 0, len(f.backends))
	for _, b := range f.backends {
		names = append(names, b.Name())
	}
	return strings.Join(names, "+")
}

// Empty reports whether no backend is configured.
func (f *FallbackTranscriber) Empty() bool {
	return len(f.backends) == 0
}

func (f *FallbackTranscriber) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if len(f.backends) == 0 {
		return "", ErrNoTranscriber
	}

	var errs []error
	for _, b := range f.backends {
		text, err := b.Transcribe(ctx, clip)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Warn("Transcription backend failed, trying next",
			"backend", b.Name(),
			"error", err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	return "", stderrors.Join(errs...)
}
