package speech

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes audio with the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
}

func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{client: openai.NewClient(apiKey)}
}

func (w *WhisperTranscriber) Name() string {
	return "whisper"
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, clip Clip) (string, error) {
	name := clip.Name
	if name == "" {
		// the API infers the format from the file extension
		name = "voice.ogg"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: name,
		Reader:   bytes.NewReader(clip.Data),
		Language: "en",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create transcription: %w", err)
	}
	return resp.Text, nil
}
