package handlers

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/bot/menus"
	"github.com/echoremedy/echoremedy-bot/internal/bot/state"
	"github.com/echoremedy/echoremedy-bot/internal/capture"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PhotoHandler handles photo and document messages
type PhotoHandler struct {
	*screens
	previewer capture.Previewer
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(s *screens) *PhotoHandler {
	// previews point back at the Telegram file so results can reuse it
	preview := capture.PreviewFunc(func(f capture.File) (string, error) {
		return menus.FilePrefix + f.Source, nil
	})
	return &PhotoHandler{screens: s, previewer: preview}
}

// Handle processes a photo message
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID

	if !h.inView(userID, navigation.Upload{}) {
		return menus.SendText(h.api, chatID, "Please open 📷 Photo analysis first.", keyboards.HomeMenu())
	}

	// Only the first file of an album is used
	if message.MediaGroupID != "" {
		if last, ok := h.stateManager.GetTempData(userID, state.KeyMediaGroup); ok && last == message.MediaGroupID {
			logger.Debug("Ignoring extra album item", "user_id", userID, "media_group", message.MediaGroupID)
			return nil
		}
		h.stateManager.SetTempData(userID, state.KeyMediaGroup, message.MediaGroupID)
	}

	// the selection itself lives in the state manager; a rejected file
	// leaves the previous one in place
	file := telegramFile(message)
	preview, err := capture.NewPhotoAdapter(h.previewer).SelectFile(file)
	if err != nil {
		return h.fail(ctx, chatID, err)
	}

	h.stateManager.SetTempData(userID, state.KeyPhotoPreview, preview)
	logger.Info("Image selected", "user_id", userID, "media_type", file.MediaType, "size", file.Size)
	return menus.SendPhotoReady(h.api, chatID, file.Name)
}

// telegramFile describes the largest photo size or the attached document
func telegramFile(message *tgbotapi.Message) capture.File {
	if len(message.Photo) > 0 {
		photo := message.Photo[len(message.Photo)-1]
		return capture.File{
			Name:      "photo.jpg",
			MediaType: "image/jpeg",
			Size:      int64(photo.FileSize),
			Source:    photo.FileID,
		}
	}
	doc := message.Document
	return capture.File{
		Name:      doc.FileName,
		MediaType: doc.MimeType,
		Size:      int64(doc.FileSize),
		Source:    doc.FileID,
	}
}
