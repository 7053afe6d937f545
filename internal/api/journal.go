package api

import (
	"net/http"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) listJournal(c *gin.Context) {
	entries, err := s.deps.Journal.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) createJournal(c *gin.Context) {
	var in services.JournalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, errors.NewValidationError("Invalid request body"))
		return
	}
	entry, err := s.deps.Journal.Create(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) deleteJournal(c *gin.Context) {
	if err := s.deps.Journal.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
