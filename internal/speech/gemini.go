package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

const transcribePrompt = `Transcribe the speech in this audio recording.

REQUIREMENTS:
- Return ONLY the spoken words as plain text
- Do not add any explanations, labels or formatting
- Keep the speaker's wording, including symptoms and durations
- If there is no speech, return an empty response`

// GeminiTranscriber transcribes audio with a Gemini multimodal model.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

func NewGeminiTranscriber(ctx context.Context, apiKey string) (*GeminiTranscriber, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTranscriber{client: client, model: geminiModel}, nil
}

func (g *GeminiTranscriber) Name() string {
	return "gemini"
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, clip Clip) (string, error) {
	model := g.client.GenerativeModel(g.model)

	mediaType := clip.MediaType
	if mediaType == "" {
		mediaType = "audio/ogg"
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mediaType, Data: clip.Data},
		genai.Text(transcribePrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *GeminiTranscriber) Close() error {
	return g.client.Close()
}
