package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumematch-web/internal/model"
	"github.com/yourusername/resumematch-web/internal/repository"
)

type HistoryHandler struct {
	history *repository.HistoryRepo
}

func NewHistoryHandler(history *repository.HistoryRepo) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Recent handles GET /api/history?limit=N
func (h *HistoryHandler) Recent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number."})
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load operation history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history."})
		return
	}

	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
