package handler

import (
	"net/http"

	"github.com/arenaworks/arena-api/internal/service"
	"github.com/arenaworks/arena-api/pkg/pagination"
	"github.com/arenaworks/arena-api/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
	maxPageOffset      int
}

func NewLeaderboardHandler(leaderboardService service.LeaderboardService, maxPageOffset int) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		maxPageOffset:      maxPageOffset,
	}
}

// GetLeaderboards handles GET /users/leaderboards?first=&after=
func (h *LeaderboardHandler) GetLeaderboards(c *gin.Context) {
	window := pagination.ParseWindow(c, h.maxPageOffset)

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), window.First, window.After)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Page{
		Data:       entries,
		Pagination: pagination.BuildLinks(c, window, len(entries)),
	})
}
