package api

import (
	stderrors "errors"
	"net/http"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypePermission:
		if appErr.Code == errors.CodeUnauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeRecognition:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return errors.CodeAnalysisFailed
}

// fail logs err and writes the notification as the response body
func (s *Server) fail(c *gin.Context, err error) {
	if s.deps.Errors != nil {
		s.deps.Errors.Handle(c.Request.Context(), err)
	}
	n := errors.UserMessage(err)
	c.JSON(statusFor(err), errorResponse{Error: errorBody{
		Code:        codeFor(err),
		Title:       n.Title,
		Description: n.Description,
	}})
}

func (s *Server) abort(c *gin.Context, err error) {
	s.fail(c, err)
	c.Abort()
}

func currentUser(c *gin.Context) *domain.SessionUser {
	user, _ := c.Get(ctxUser)
	u, _ := user.(*domain.SessionUser)
	return u
}
