package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/capture"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const transcribeTimeout = time.Minute

// VoiceHandler turns voice notes and audio files into a transcript
type VoiceHandler struct {
	*screens
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(s *screens) *VoiceHandler {
	return &VoiceHandler{screens: s}
}

// Handle processes a voice or audio message
func (h *VoiceHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID

	if !h.inView(userID, navigation.Voice{}) {
		return menus.SendText(h.api, chatID, "Please open 🎙️ Voice analysis first.", keyboards.HomeMenu())
	}
	if h.deps.Transcriber == nil {
		return h.fail(ctx, chatID, capture.ErrVoiceUnsupported)
	}

	fileID, clip := voiceClip(message)

	if _, err := h.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logger.Debug("Failed to send chat action", "error", err)
	}

	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return h.fail(ctx, chatID, errors.NewBackendError(err, "resolve voice message"))
	}

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	clip.Data, err = h.deps.Files.Fetch(tctx, url)
	if err != nil {
		return h.fail(ctx, chatID, errors.NewBackendError(err, "download voice message"))
	}

	transcript, err := speech.TranscribeClip(tctx, h.deps.Transcriber, clip)
	if err != nil {
		return h.fail(ctx, chatID, err)
	}
	if strings.TrimSpace(transcript) == "" {
		return h.fail(ctx, chatID, errors.NewEmptyInputError("No speech detected"))
	}

	h.stateManager.SetTempData(userID, state.KeyTranscript, transcript)
	logger.Info("Voice message transcribed", "user_id", userID, "backend", h.deps.Transcriber.Name(), "chars", len(transcript))
	return menus.SendTranscript(h.api, chatID, transcript)
}

func voiceClip(message *tgbotapi.Message) (string, speech.Clip) {
	if message.Voice != nil {
		mediaType := message.Voice.MimeType
		if mediaType == "" {
			mediaType = "audio/ogg"
		}
		return message.Voice.FileID, speech.Clip{Name: "voice.ogg", MediaType: mediaType}
	}
	return message.Audio.FileID, speech.Clip{Name: message.Audio.FileName, MediaType: message.Audio.MimeType}
}
