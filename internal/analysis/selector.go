// Package analysis produces symptom analysis results from capture payloads.
// The only implementation is a mock that picks from a fixed catalog.
package analysis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
)

const (
	DefaultPhotoDelay = 3 * time.Second
	DefaultVoiceDelay = 2 * time.Second
)

// Payload is the normalized output of a capture adapter.
type Payload struct {
	Modality   domain.Modality
	ImageURL   string
	Transcript string
}

func PhotoPayload(imageURL string) Payload {
	return Payload{Modality: domain.ModalityPhoto, ImageURL: imageURL}
}

func VoicePayload(transcript string) Payload {
	return Payload{Modality: domain.ModalityVoice, Transcript: transcript}
}

// Selector turns a payload into an analysis result.
type Selector interface {
	Analyze(ctx context.Context, p Payload) (domain.AnalysisResult, error)
}

// Strategy picks one of n templates.
type Strategy interface {
	Pick(n int) int
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(n int) int

func (f StrategyFunc) Pick(n int) int {
	return f(n)
}

// RandomStrategy picks uniformly at random.
type RandomStrategy struct{}

func (RandomStrategy) Pick(n int) int {
	return rand.IntN(n)
}

// FixedStrategy always picks the same index.
type FixedStrategy int

func (f FixedStrategy) Pick(int) int {
	return int(f)
}

type Option func(*MockSelector)

func WithStrategy(s Strategy) Option {
	return func(m *MockSelector) {
		if s != nil {
			m.strategy = s
		}
	}
}

// WithDelays sets the simulated latency per modality.
func WithDelays(photo, voice time.Duration) Option {
	return func(m *MockSelector) {
		m.photoDelay = photo
		m.voiceDelay = voice
	}
}

// MockSelector returns canned results after a simulated inference delay.
// The transcript content does not influence the pick.
type MockSelector struct {
	strategy   Strategy
	photo      []Template
	voice      []Template
	photoDelay time.Duration
	voiceDelay time.Duration
}

func NewMockSelector(opts ...Option) *MockSelector {
	m := &MockSelector{
		strategy:   RandomStrategy{},
		photo:      PhotoTemplates,
		voice:      VoiceTemplates,
		photoDelay: DefaultPhotoDelay,
		voiceDelay: DefaultVoiceDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Analyze validates p, waits out the simulated delay and picks a template.
// Invalid input fails before the delay starts.
func (m *MockSelector) Analyze(ctx context.Context, p Payload) (domain.AnalysisResult, error) {
	var (
		catalog []Template
		delay   time.Duration
	)

	switch p.Modality {
	case domain.ModalityPhoto:
		if p.ImageURL == "" {
			return domain.AnalysisResult{}, errors.NewValidationError("No image selected")
		}
		p.Transcript = ""
		catalog, delay = m.photo, m.photoDelay
	case domain.ModalityVoice:
		if strings.TrimSpace(p.Transcript) == "" {
			return domain.AnalysisResult{}, errors.NewEmptyInputError("Please record your symptoms first")
		}
		p.ImageURL = ""
		catalog, delay = m.voice, m.voiceDelay
	default:
		return domain.AnalysisResult{}, errors.NewValidationError(fmt.Sprintf("unknown modality %q", p.Modality))
	}

	if err := wait(ctx, delay); err != nil {
		return domain.AnalysisResult{}, err
	}

	tmpl, err := m.pick(catalog)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	result := tmpl.result(p)
	logger.Debug("Mock analysis selected",
		"modality", p.Modality,
		"condition", result.Condition,
		"urgency", result.Urgency)
	return result, nil
}

func (m *MockSelector) pick(catalog []Template) (tmpl Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewAnalysisFailedError(fmt.Errorf("strategy panicked: %v", r))
		}
	}()

	if len(catalog) == 0 {
		return Template{}, errors.NewAnalysisFailedError(fmt.Errorf("empty template catalog"))
	}
	i := m.strategy.Pick(len(catalog))
	if i < 0 || i >= len(catalog) {
		return Template{}, errors.NewAnalysisFailedError(fmt.Errorf("strategy picked %d of %d", i, len(catalog)))
	}
	return catalog[i], nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
