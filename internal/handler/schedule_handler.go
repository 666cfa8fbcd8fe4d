package handler

import (
	"net/http"
	"strconv"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/middleware"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/service"
	"github.com/arenaworks/arena-api/pkg/pagination"
	"github.com/arenaworks/arena-api/pkg/response"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleService    service.ScheduleService
	leaderboardService service.LeaderboardService
	maxPageOffset      int
}

func NewScheduleHandler(scheduleService service.ScheduleService, leaderboardService service.LeaderboardService, maxPageOffset int) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService:    scheduleService,
		leaderboardService: leaderboardService,
		maxPageOffset:      maxPageOffset,
	}
}

// Create handles POST /schedules (admin).
func (h *ScheduleHandler) Create(c *gin.Context) {
	var input dto.CreateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// List handles GET /schedules?status=&first=&after=
func (h *ScheduleHandler) List(c *gin.Context) {
	window := pagination.ParseWindow(c, h.maxPageOffset)
	status := model.ScheduleStatus(c.Query("status"))

	schedules, err := h.scheduleService.List(c.Request.Context(), status, window.First, window.After)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Page{
		Data:       schedules,
		Pagination: pagination.BuildLinks(c, window, len(schedules)),
	})
}

// UpdateStatus handles PATCH /schedules/:id/status (admin).
func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}

	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	schedule, err := h.scheduleService.UpdateStatus(c.Request.Context(), uint(id), input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// GetGame handles GET /games/:id.
func (h *ScheduleHandler) GetGame(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	game, err := h.scheduleService.GetGame(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// RecordResult handles POST /games/:id/results (admin).
func (h *ScheduleHandler) RecordResult(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	var input dto.ResultInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.leaderboardService.RecordResult(c.Request.Context(), input.UserID, uint(id), input.Won, input.XP, input.Coins); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "result recorded"})
}

// Apply handles POST /schedules/:id/applications.
func (h *ScheduleHandler) Apply(c *gin.Context) {
	user := middleware.AuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}

	var input dto.ApplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	application, err := h.scheduleService.Apply(c.Request.Context(), user, uint(id), input.Team)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// Withdraw handles DELETE /schedules/:id/applications.
func (h *ScheduleHandler) Withdraw(c *gin.Context) {
	user := middleware.AuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}

	if err := h.scheduleService.Withdraw(c.Request.Context(), user, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "application withdrawn"})
}
