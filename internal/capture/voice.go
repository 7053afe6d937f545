package capture

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
)

// DefaultFrameInterval approximates one animation frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Segment is one recognized phrase. Interim segments may still change.
type Segment struct {
	Text  string
	Final bool
}

// RecognitionEvent carries the full, cumulative list of segments recognized
// in the current capture.
type RecognitionEvent struct {
	Results []Segment
}

// Transcript joins the finalized segments followed by the interim ones.
func (e RecognitionEvent) Transcript() string {
	var final, interim strings.Builder
	for _, seg := range e.Results {
		if seg.Final {
			final.WriteString(seg.Text)
		} else {
			interim.WriteString(seg.Text)
		}
	}
	return final.String() + interim.String()
}

// RecognitionHandlers receive recognizer events. Any of them may be called
// from a goroutine owned by the recognizer.
type RecognitionHandlers struct {
	OnResult func(RecognitionEvent)
	OnError  func(error)
	OnEnd    func()
}

// Recognizer is a continuous, interim-enabled speech recognizer.
type Recognizer interface {
	Start(ctx context.Context, h RecognitionHandlers) error
	Stop()
}

// LevelSource reports the current input amplitude, 0 to 255.
type LevelSource interface {
	Level() float64
	Close() error
}

// Microphone grants access to an input level source.
type Microphone interface {
	Open(ctx context.Context) (LevelSource, error)
}

// ErrVoiceUnsupported is returned when no recognizer is available.
var ErrVoiceUnsupported = errors.New(errors.ErrorTypeValidation, errors.CodeInvalidInput, "Voice input is not supported")

type VoiceOption func(*VoiceAdapter)

// WithFrameInterval sets how often the input level is sampled.
func WithFrameInterval(d time.Duration) VoiceOption {
	return func(a *VoiceAdapter) {
		if d > 0 {
			a.frame = d
		}
	}
}

type voiceSession struct {
	source  LevelSource
	stop    atomic.Bool
	sampled chan struct{}
	done    chan struct{}
}

// VoiceAdapter turns a recognizer and a microphone into a running transcript.
type VoiceAdapter struct {
	recognizer Recognizer
	mic        Microphone
	frame      time.Duration

	mu         sync.Mutex
	starting   bool
	active     *voiceSession
	done       chan struct{}
	transcript string
	level      float64
	err        error
}

func NewVoiceAdapter(recognizer Recognizer, mic Microphone, opts ...VoiceOption) *VoiceAdapter {
	done := make(chan struct{})
	close(done)
	a := &VoiceAdapter{
		recognizer: recognizer,
		mic:        mic,
		frame:      DefaultFrameInterval,
		done:       done,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Supported reports whether voice capture can be offered at all.
func (a *VoiceAdapter) Supported() bool {
	return a.recognizer != nil && a.mic != nil
}

// StartCapture opens the microphone, starts recognition and level sampling.
// A refused microphone yields PermissionDenied and changes nothing.
func (a *VoiceAdapter) StartCapture(ctx context.Context) error {
	if !a.Supported() {
		return ErrVoiceUnsupported
	}
	a.mu.Lock()
	if a.active != nil || a.starting {
		a.mu.Unlock()
		return nil
	}
	a.starting = true
	a.mu.Unlock()

	source, err := a.mic.Open(ctx)
	if err != nil {
		a.mu.Lock()
		a.starting = false
		a.mu.Unlock()
		return errors.NewPermissionDeniedError(err, "Microphone")
	}

	s := &voiceSession{
		source:  source,
		sampled: make(chan struct{}),
		done:    make(chan struct{}),
	}

	a.mu.Lock()
	a.starting = false
	a.active = s
	a.done = s.done
	a.transcript = ""
	a.level = 0
	a.err = nil
	a.mu.Unlock()

	go a.sample(s)

	err = a.recognizer.Start(ctx, RecognitionHandlers{
		OnResult: func(ev RecognitionEvent) { a.onResult(s, ev) },
		OnError:  func(err error) { a.end(s, errors.NewRecognitionError(err)) },
		OnEnd:    func() { a.end(s, nil) },
	})
	if err != nil {
		recErr := errors.NewRecognitionError(err)
		a.end(s, recErr)
		return recErr
	}

	logger.Debug("Voice capture started")
	return nil
}

// StopCapture halts recognition and sampling. The transcript is kept.
func (a *VoiceAdapter) StopCapture() {
	a.mu.Lock()
	s := a.active
	a.mu.Unlock()
	if s == nil {
		return
	}

	a.recognizer.Stop()
	a.end(s, nil)
}

func (a *VoiceAdapter) onResult(s *voiceSession, ev RecognitionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != s {
		return
	}
	a.transcript = ev.Transcript()
}

func (a *VoiceAdapter) sample(s *voiceSession) {
	defer close(s.sampled)

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	for {
		level := s.source.Level()
		a.mu.Lock()
		if a.active == s {
			a.level = level
		}
		a.mu.Unlock()

		if s.stop.Load() {
			return
		}
		<-ticker.C
		if s.stop.Load() {
			return
		}
	}
}

// end finishes s once; later calls for the same session are ignored.
func (a *VoiceAdapter) end(s *voiceSession, err error) {
	a.mu.Lock()
	if a.active != s {
		a.mu.Unlock()
		return
	}
	a.active = nil
	if err != nil {
		a.err = err
	}
	a.mu.Unlock()

	s.stop.Store(true)
	<-s.sampled
	if cerr := s.source.Close(); cerr != nil {
		logger.Warn("Failed to close level source", "error", cerr)
	}

	a.mu.Lock()
	a.level = 0
	a.mu.Unlock()

	if err != nil {
		logger.Warn("Voice capture ended with error", "error", err)
	}
	close(s.done)
}

// Recording is also true while a capture is still opening the microphone.
func (a *VoiceAdapter) Recording() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != nil || a.starting
}

// Transcript returns the running transcript, which may still change while
// recording.
func (a *VoiceAdapter) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript
}

// SetTranscript replaces the transcript with typed text. Ignored while recording.
func (a *VoiceAdapter) SetTranscript(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		a.transcript = text
	}
}

func (a *VoiceAdapter) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.level
}

// Err returns the recognition error that ended the last capture, if any.
func (a *VoiceAdapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed once the current capture has fully ended.
func (a *VoiceAdapter) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}
