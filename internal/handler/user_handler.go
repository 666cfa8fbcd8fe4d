package handler

import (
	"net/http"
	"strconv"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/middleware"
	"github.com/arenaworks/arena-api/internal/service"
	"github.com/arenaworks/arena-api/pkg/pagination"
	"github.com/arenaworks/arena-api/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService     service.UserService
	scheduleService service.ScheduleService
	maxPageOffset   int
}

func NewUserHandler(userService service.UserService, scheduleService service.ScheduleService, maxPageOffset int) *UserHandler {
	return &UserHandler{
		userService:     userService,
		scheduleService: scheduleService,
		maxPageOffset:   maxPageOffset,
	}
}

// Lookup handles GET /users/lookup?username=&limit=&full=
func (h *UserHandler) Lookup(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = service.LookupDefaultLimit
	}

	full, err := strconv.ParseBool(c.Query("full"))
	if err != nil {
		full = false
	}

	res, err := h.userService.Lookup(c.Request.Context(), c.Query("username"), limit, full)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Show handles GET /users/:user — the bound user, sanitized.
func (h *UserHandler) Show(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewPublicUser(target))
}

// List handles GET /users?first=&after=
func (h *UserHandler) List(c *gin.Context) {
	window := pagination.ParseWindow(c, h.maxPageOffset)

	users, err := h.userService.List(c.Request.Context(), window.First, window.After)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Page{
		Data:       users,
		Pagination: pagination.BuildLinks(c, window, len(users)),
	})
}

// Update handles POST /users/:user with a partial body.
func (h *UserHandler) Update(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var input dto.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), target, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/:user — the cascading removal.
func (h *UserHandler) Delete(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	id, err := h.userService.Delete(c.Request.Context(), target)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Activity handles GET /users/:user/activity?first=&after=
func (h *UserHandler) Activity(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	window := pagination.ParseWindow(c, h.maxPageOffset)

	activity, err := h.userService.Activity(c.Request.Context(), target.ID, window.First, window.After)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Page{
		Data:       activity,
		Pagination: pagination.BuildLinks(c, window, len(activity)),
	})
}

// Applications handles GET /users/:user/applications?first=&after=
func (h *UserHandler) Applications(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	window := pagination.ParseWindow(c, h.maxPageOffset)

	applications, err := h.scheduleService.UserApplications(c.Request.Context(), target.ID, window.First, window.After)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Page{
		Data:       applications,
		Pagination: pagination.BuildLinks(c, window, len(applications)),
	})
}

// UploadAvatar handles POST /users/:user/avatar (multipart).
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	target := middleware.TargetUser(c)
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read avatar"})
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateAvatar(c.Request.Context(), target, &service.AvatarFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPublicUser(user))
}
