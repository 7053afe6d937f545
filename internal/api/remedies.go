package api

import (
	"net/http"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) listRemedies(c *gin.Context) {
	remedies, err := s.deps.Remedies.Filter(c.Request.Context(),
		c.DefaultQuery("category", services.CategoryAll), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": s.deps.Remedies.Categories(), "remedies": remedies})
}

type assistantRequest struct {
	Message string `json:"message"`
}

func (s *Server) askAssistant(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.fail(c, errors.NewValidationError("Please type a message"))
		return
	}
	reply, _ := s.deps.Assistant.Reply(req.Message)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
