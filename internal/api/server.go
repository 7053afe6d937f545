// Package api serves the web client over JSON.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/interfaces"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/echoremedy/echoremedy-bot/internal/speech"
	"github.com/gin-gonic/gin"
)

// Dependencies holds the services behind the API
type Dependencies struct {
	Sessions  interfaces.SessionServiceInterface
	History   interfaces.HistoryServiceInterface
	Journal   interfaces.JournalServiceInterface
	Remedies  interfaces.RemedyServiceInterface
	Triage    interfaces.TriageServiceInterface
	Assistant interfaces.AssistantServiceInterface
	// Transcriber is nil when no speech backend is configured.
	Transcriber speech.Transcriber
	Errors      *errors.Handler
}

// Server is the HTTP transport
type Server struct {
	deps      Dependencies
	uploadDir string
	engine    *gin.Engine
}

// NewServer builds the router. Uploaded images are stored in uploadDir and
// served under /uploads.
func NewServer(deps Dependencies, uploadDir string) (*Server, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	s := &Server{deps: deps, uploadDir: uploadDir, engine: gin.New()}
	SetupMiddleware(s.engine)
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Static("/uploads", s.uploadDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1")
	{
		public.POST("/session", s.signIn)
	}

	// identified routes need a session id but not a signed-in user
	identified := r.Group("/api/v1")
	identified.Use(s.identify())
	{
		identified.GET("/session", s.currentSession)
		identified.DELETE("/session", s.signOut)
		identified.GET("/history", s.listHistory)
		identified.GET("/history/stats", s.historyStats)
		identified.GET("/history/:id", s.getHistory)
		identified.DELETE("/history/:id", s.deleteHistory)
	}

	private := r.Group("/api/v1")
	private.Use(s.identify(), s.requireSession())
	{
		private.POST("/analyze/photo", s.analyzePhoto)
		private.POST("/analyze/voice", s.analyzeVoice)
		private.POST("/transcribe", s.transcribe)
		private.GET("/journal", s.listJournal)
		private.POST("/journal", s.createJournal)
		private.DELETE("/journal/:id", s.deleteJournal)
		private.GET("/remedies", s.listRemedies)
		private.POST("/assistant", s.askAssistant)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
