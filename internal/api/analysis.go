package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/analysis"
	"github.com/echoremedy/echoremedy-bot/internal/capture"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxImageBytes     = 10 << 20
	maxAudioBytes     = 20 << 20
	transcribeTimeout = time.Minute
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

// uploadPreviewer stores an accepted image and returns its public URL
func (s *Server) uploadPreviewer(c *gin.Context, header *multipart.FileHeader) capture.Previewer {
	return capture.PreviewFunc(func(f capture.File) (string, error) {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !imageExtensions[ext] {
			ext = ".img"
		}
		name := uuid.NewString() + ext
		if err := c.SaveUploadedFile(header, filepath.Join(s.uploadDir, name)); err != nil {
			return "", err
		}
		return "/uploads/" + name, nil
	})
}

func (s *Server) analyzePhoto(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		s.fail(c, errors.NewValidationError("Please upload an image"))
		return
	}
	if header.Size > maxImageBytes {
		s.fail(c, errors.NewValidationError("Image is too large"))
		return
	}

	file := capture.File{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      header.Size,
		Source:    header.Filename,
	}
	preview, err := capture.NewPhotoAdapter(s.uploadPreviewer(c, header)).SelectFile(file)
	if err != nil {
		s.fail(c, err)
		return
	}

	entry, err := s.deps.Triage.Analyze(c.Request.Context(), c.GetString(ctxOwner), analysis.PhotoPayload(preview))
	if err != nil {
		path := filepath.Join(s.uploadDir, filepath.Base(preview))
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn("Failed to remove upload", "path", path, "error", rmErr)
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type voiceRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) analyzeVoice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		s.fail(c, errors.NewEmptyInputError("Please record your symptoms first"))
		return
	}

	entry, err := s.deps.Triage.Analyze(c.Request.Context(), c.GetString(ctxOwner), analysis.VoicePayload(req.Transcript))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// transcribe turns an uploaded audio clip into text without analyzing it
func (s *Server) transcribe(c *gin.Context) {
	if s.deps.Transcriber == nil {
		s.fail(c, capture.ErrVoiceUnsupported)
		return
	}

	header, err := c.FormFile("audio")
	if err != nil {
		s.fail(c, errors.NewValidationError("Please upload an audio clip"))
		return
	}
	if header.Size > maxAudioBytes {
		s.fail(c, errors.NewValidationError("Audio clip is too large"))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, errors.NewBackendError(err, "open audio"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		s.fail(c, errors.NewBackendError(err, "read audio"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), transcribeTimeout)
	defer cancel()
	text, err := speech.TranscribeClip(ctx, s.deps.Transcriber, speech.Clip{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		s.fail(c, errors.NewEmptyInputError("No speech detected"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text})
}
