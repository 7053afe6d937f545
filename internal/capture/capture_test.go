package capture

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPhotoAdapterRejectsNonImages(t *testing.T) {
	files := []File{
		{Name: "notes.txt", MediaType: "text/plain"},
		{Name: "clip.mp4", MediaType: "video/mp4"},
		{Name: "blob", MediaType: ""},
		{Name: "doc.pdf", MediaType: "application/pdf"},
	}
	for _, f := range files {
		t.Run(f.Name, func(t *testing.T) {
			a := NewPhotoAdapter(nil)
			preview, err := a.SelectFile(f)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidFileType))
			assert.Empty(t, preview)
			assert.False(t, a.Ready())
			assert.Empty(t, a.Preview())
		})
	}
}

func TestPhotoAdapterRejectionKeepsPreviousSelection(t *testing.T) {
	a := NewPhotoAdapter(nil)
	_, err := a.SelectFile(File{Name: "rash.jpg", MediaType: "image/jpeg", Source: "uploads/rash.jpg"})
	require.NoError(t, err)

	_, err = a.SelectFile(File{Name: "notes.txt", MediaType: "text/plain"})
	require.Error(t, err)
	assert.Equal(t, "uploads/rash.jpg", a.Preview())
	assert.True(t, a.Ready())
}

func TestPhotoAdapterPreviewFailureIsBackendFault(t *testing.T) {
	a := NewPhotoAdapter(PreviewFunc(func(File) (string, error) {
		return "", stderrors.New("disk full")
	}))

	_, err := a.SelectFile(File{Name: "rash.jpg", MediaType: "image/jpeg"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrBackendFault))
	assert.Equal(t, "Request failed", errors.UserMessage(err).Title)
	assert.False(t, a.Ready())
}

func TestPhotoAdapterDropUsesFirstFile(t *testing.T) {
	var previewed []string
	a := NewPhotoAdapter(PreviewFunc(func(f File) (string, error) {
		previewed = append(previewed, f.Name)
		return "preview:" + f.Name, nil
	}))

	a.DragEnter()
	assert.True(t, a.Dragging())

	preview, err := a.Drop([]File{
		{Name: "first.png", MediaType: "image/png"},
		{Name: "second.png", MediaType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "preview:first.png", preview)
	assert.Equal(t, []string{"first.png"}, previewed)
	assert.False(t, a.Dragging())
	assert.True(t, a.Ready())
}

func TestPhotoAdapterEmptyDrop(t *testing.T) {
	a := NewPhotoAdapter(nil)
	a.DragEnter()
	preview, err := a.Drop(nil)
	require.NoError(t, err)
	assert.Empty(t, preview)
	assert.False(t, a.Dragging())
	assert.False(t, a.Ready())
}

type fakeLevel struct {
	level  float64
	closed atomic.Bool
}

func (l *fakeLevel) Level() float64 { return l.level }
func (l *fakeLevel) Close() error {
	l.closed.Store(true)
	return nil
}

type fakeMic struct {
	source *fakeLevel
	err    error
	opened atomic.Int32
}

func (m *fakeMic) Open(context.Context) (LevelSource, error) {
	m.opened.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.source, nil
}

type fakeRecognizer struct {
	mu       sync.Mutex
	handlers RecognitionHandlers
	started  int
	stopped  int
	startErr error
}

func (r *fakeRecognizer) Start(_ context.Context, h RecognitionHandlers) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.handlers = h
	r.started++
	return nil
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func (r *fakeRecognizer) emit(segs ...Segment) {
	r.mu.Lock()
	h := r.handlers
	r.mu.Unlock()
	h.OnResult(RecognitionEvent{Results: segs})
}

func (r *fakeRecognizer) fail(err error) {
	r.mu.Lock()
	h := r.handlers
	r.mu.Unlock()
	h.OnError(err)
}

func TestRecognitionEventTranscript(t *testing.T) {
	ev := RecognitionEvent{Results: []Segment{
		{Text: "I have a ", Final: true},
		{Text: "bad headache", Final: true},
		{Text: " since mor", Final: false},
	}}
	assert.Equal(t, "I have a bad headache since mor", ev.Transcript())
}

func TestVoiceAdapterTranscriptFollowsEvents(t *testing.T) {
	rec := &fakeRecognizer{}
	mic := &fakeMic{source: &fakeLevel{level: 42}}
	a := NewVoiceAdapter(rec, mic, WithFrameInterval(time.Millisecond))

	require.NoError(t, a.StartCapture(context.Background()))
	assert.True(t, a.Recording())

	rec.emit(Segment{Text: "I have a bad head", Final: false})
	assert.Equal(t, "I have a bad head", a.Transcript())

	// the interim guess may shrink before finalizing
	rec.emit(Segment{Text: "I have a bad", Final: false})
	assert.Equal(t, "I have a bad", a.Transcript())

	rec.emit(Segment{Text: "I have a bad headache", Final: true}, Segment{Text: " since", Final: false})
	assert.Equal(t, "I have a bad headache since", a.Transcript())

	assert.Eventually(t, func() bool { return a.Level() == 42 }, time.Second, time.Millisecond)

	a.StopCapture()
	<-a.Done()
	assert.False(t, a.Recording())
	assert.Equal(t, "I have a bad headache since", a.Transcript())
	assert.Zero(t, a.Level())
	assert.True(t, mic.source.closed.Load())
	assert.Equal(t, 1, rec.stopped)
	assert.NoError(t, a.Err())

	// events after stopping are ignored
	rec.emit(Segment{Text: "late", Final: true})
	assert.Equal(t, "I have a bad headache since", a.Transcript())
}

func TestVoiceAdapterPermissionDenied(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewVoiceAdapter(rec, &fakeMic{err: stderrors.New("NotAllowedError")})
	a.SetTranscript("typed earlier")

	err := a.StartCapture(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrPermissionDenied))
	assert.False(t, a.Recording())
	assert.Equal(t, "typed earlier", a.Transcript())
	assert.Zero(t, rec.started)
}

func TestVoiceAdapterRecognitionErrorKeepsPartialTranscript(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewVoiceAdapter(rec, &fakeMic{source: &fakeLevel{}}, WithFrameInterval(time.Millisecond))

	require.NoError(t, a.StartCapture(context.Background()))
	rec.emit(Segment{Text: "my throat is", Final: false})
	rec.fail(stderrors.New("network"))

	<-a.Done()
	assert.False(t, a.Recording())
	assert.Equal(t, "my throat is", a.Transcript())
	assert.True(t, stderrors.Is(a.Err(), errors.ErrRecognition))
}

func TestVoiceAdapterStartFailureReleasesMicrophone(t *testing.T) {
	rec := &fakeRecognizer{startErr: stderrors.New("busy")}
	mic := &fakeMic{source: &fakeLevel{}}
	a := NewVoiceAdapter(rec, mic, WithFrameInterval(time.Millisecond))

	err := a.StartCapture(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrRecognition))
	assert.False(t, a.Recording())
	assert.True(t, mic.source.closed.Load())
}

func TestVoiceAdapterUnsupported(t *testing.T) {
	a := NewVoiceAdapter(nil, nil)
	assert.False(t, a.Supported())
	assert.ErrorIs(t, a.StartCapture(context.Background()), ErrVoiceUnsupported)

	// Done never blocks when nothing was started
	select {
	case <-a.Done():
	default:
		t.Fatal("Done should be closed before any capture")
	}
}

func TestVoiceAdapterConcurrentStartOpensOnce(t *testing.T) {
	rec := &fakeRecognizer{}
	mic := &fakeMic{source: &fakeLevel{}}
	a := NewVoiceAdapter(rec, mic, WithFrameInterval(time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.StartCapture(context.Background()))
		}()
	}
	wg.Wait()

	assert.True(t, a.Recording())
	assert.EqualValues(t, 1, mic.opened.Load())
	assert.Equal(t, 1, rec.started)

	a.StopCapture()
	<-a.Done()
	assert.False(t, a.Recording())
	assert.True(t, mic.source.closed.Load())
}

func TestVoiceAdapterStopWithoutStart(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewVoiceAdapter(rec, &fakeMic{source: &fakeLevel{}})
	a.StopCapture()
	assert.Zero(t, rec.stopped)
}
