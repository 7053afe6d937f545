package speech

import (
	"context"
	stderrors "errors"
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

type stubTranscriber struct {
	name  string
	text  string
	err   error
	block bool
	calls int
}

func (s *stubTranscriber) Name() string { return s.name }

func (s *stubTranscriber) Transcribe(ctx context.Context, _ Clip) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

var voiceNote = Clip{Name: "voice.ogg", MediaType: "audio/ogg", Data: []byte("OggS fake opus payload")}

func TestFallbackTranscriberUsesFirstSuccess(t *testing.T) {
	primary := &stubTranscriber{name: "gemini", err: stderrors.New("quota exceeded")}
	secondary := &stubTranscriber{name: "whisper", text: " my stomach hurts \n"}

	f := NewFallbackTranscriber(primary, nil, secondary)
	assert.Equal(t, "gemini+whisper", f.Name())

	text, err := f.Transcribe(context.Background(), voiceNote)
	require.NoError(t, err)
	assert.Equal(t, "my stomach hurts", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackTranscriberJoinsErrors(t *testing.T) {
	f := NewFallbackTranscriber(
		&stubTranscriber{name: "gemini", err: stderrors.New("down")},
		&stubTranscriber{name: "whisper", err: stderrors.New("unauthorized")},
	)
	_, err := f.Transcribe(context.Background(), voiceNote)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini: down")
	assert.Contains(t, err.Error(), "whisper: unauthorized")
}

func TestFallbackTranscriberEmpty(t *testing.T) {
	f := NewFallbackTranscriber()
	assert.True(t, f.Empty())
	_, err := f.Transcribe(context.Background(), voiceNote)
	assert.ErrorIs(t, err, ErrNoTranscriber)
}

func TestTranscribeClip(t *testing.T) {
	text, err := TranscribeClip(context.Background(),
		&stubTranscriber{name: "stub", text: "I have a bad headache since morning"}, voiceNote)
	require.NoError(t, err)
	assert.Equal(t, "I have a bad headache since morning", text)
}

func TestTranscribeClipRecognitionError(t *testing.T) {
	_, err := TranscribeClip(context.Background(),
		&stubTranscriber{name: "stub", err: stderrors.New("bad audio")}, voiceNote)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrRecognition))
}

func TestTranscribeClipEmptyAudio(t *testing.T) {
	_, err := TranscribeClip(context.Background(), &stubTranscriber{name: "stub"}, Clip{})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
}

func TestTranscribeClipCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := TranscribeClip(ctx, &stubTranscriber{name: "slow", block: true}, voiceNote)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, stderrors.Is(err, errors.ErrRecognition))
	assert.Equal(t, "Speech recognition error", errors.UserMessage(err).Title)
}

func TestClipMicrophoneLevels(t *testing.T) {
	data := make([]byte, levelWindow+2)
	for i := range data[:levelWindow] {
		data[i] = 100
	}
	data[levelWindow], data[levelWindow+1] = 10, 30

	src, err := NewClipMicrophone(Clip{Data: data}).Open(context.Background())
	require.NoError(t, err)
	defer src.Close()

	assert.InDelta(t, 100, src.Level(), 0.001)
	assert.InDelta(t, 20, src.Level(), 0.001)
	assert.InDelta(t, 100, src.Level(), 0.001, "wraps to the start")

	_, err = NewClipMicrophone(Clip{}).Open(context.Background())
	assert.ErrorIs(t, err, ErrEmptyClip)
}
