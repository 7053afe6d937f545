package api

import (
	"net/http"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type signInRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// signIn creates a session. A client without a session id is issued one.
func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("Invalid request body"))
		return
	}

	sid, err := uuid.Parse(c.GetHeader(SessionHeader))
	if err != nil {
		sid = uuid.New()
	}

	user, err := s.deps.Sessions.SignIn(c.Request.Context(), owner(sid.String()), req.Email, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header(SessionHeader, sid.String())
	c.JSON(http.StatusCreated, gin.H{"sessionId": sid.String(), "user": user})
}

func (s *Server) currentSession(c *gin.Context) {
	user, err := s.deps.Sessions.Current(c.Request.Context(), c.GetString(ctxOwner))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": user != nil, "user": user})
}

func (s *Server) signOut(c *gin.Context) {
	if err := s.deps.Sessions.SignOut(c.Request.Context(), c.GetString(ctxOwner)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
