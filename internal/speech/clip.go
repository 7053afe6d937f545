package speech

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/echoremedy/echoremedy-bot/internal/capture"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
)

// ErrEmptyClip is returned when a clip carries no audio.
var ErrEmptyClip = stderrors.New("clip has no audio")

// levelWindow is how many bytes one level sample averages over.
const levelWindow = 1024

// ClipRecognizer feeds a recorded clip through a Transcriber and reports
// the text as a single finalized segment.
type ClipRecognizer struct {
	transcriber Transcriber
	clip        Clip

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewClipRecognizer(t Transcriber, clip Clip) *ClipRecognizer {
	return &ClipRecognizer{transcriber: t, clip: clip}
}

func (r *ClipRecognizer) Start(ctx context.Context, h capture.RecognitionHandlers) error {
	if r.transcriber == nil {
		return ErrNoTranscriber
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return stderrors.New("recognizer already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		text, err := r.transcriber.Transcribe(ctx, r.clip)
		switch {
		case ctx.Err() != nil:
			h.OnEnd()
		case err != nil:
			h.OnError(err)
		default:
			h.OnResult(capture.RecognitionEvent{
				Results: []capture.Segment{{Text: text, Final: true}},
			})
			h.OnEnd()
		}
	}()
	return nil
}

// Stop cancels a pending transcription and waits for it to return.
func (r *ClipRecognizer) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// ClipMicrophone meters a recorded clip as if it were live input.
type ClipMicrophone struct {
	clip Clip
}

func NewClipMicrophone(clip Clip) *ClipMicrophone {
	return &ClipMicrophone{clip: clip}
}

func (m *ClipMicrophone) Open(context.Context) (capture.LevelSource, error) {
	if len(m.clip.Data) == 0 {
		return nil, ErrEmptyClip
	}
	return &clipLevel{data: m.clip.Data}, nil
}

// clipLevel walks the clip one window per sample, wrapping at the end.
type clipLevel struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

func (l *clipLevel) Level() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	end := l.pos + levelWindow
	if end > len(l.data) {
		end = len(l.data)
	}
	window := l.data[l.pos:end]
	l.pos = end
	if l.pos >= len(l.data) {
		l.pos = 0
	}

	if len(window) == 0 {
		return 0
	}
	var sum int
	for _, b := range window {
		sum += int(b)
	}
	return float64(sum) / float64(len(window))
}

func (l *clipLevel) Close() error {
	return nil
}

// TranscribeClip runs clip through a voice adapter and returns the final
// transcript once recognition ends.
func TranscribeClip(ctx context.Context, t Transcriber, clip Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", errors.NewEmptyInputError("Voice message has no audio")
	}

	adapter := capture.NewVoiceAdapter(NewClipRecognizer(t, clip), NewClipMicrophone(clip))
	if err := adapter.StartCapture(ctx); err != nil {
		return "", err
	}

	select {
	case <-adapter.Done():
	case <-ctx.Done():
		adapter.StopCapture()
	}

	if err := ctx.Err(); err != nil {
		return adapter.Transcript(), errors.NewRecognitionError(err)
	}
	if err := adapter.Err(); err != nil {
		return adapter.Transcript(), err
	}
	return adapter.Transcript(), nil
}
