package api

import (
	"net/http"
	"strconv"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) listHistory(c *gin.Context) {
	entries, err := s.deps.History.Query(c.Request.Context(), c.GetString(ctxOwner), services.HistoryFilter{
		Search:  c.Query("q"),
		Urgency: c.DefaultQuery("urgency", services.UrgencyAll),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) historyStats(c *gin.Context) {
	ctx, owner := c.Request.Context(), c.GetString(ctxOwner)
	stats, err := s.deps.History.Stats(ctx, owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	recent, err := s.deps.History.Recent(ctx, owner, services.RecentLimit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "recent": recent})
}

func historyID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("Invalid history id")
	}
	return id, nil
}

func (s *Server) getHistory(c *gin.Context) {
	id, err := historyID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	entry, err := s.deps.History.Get(c.Request.Context(), c.GetString(ctxOwner), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteHistory(c *gin.Context) {
	id, err := historyID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.deps.History.Remove(c.Request.Context(), c.GetString(ctxOwner), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
