package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/service"
	"github.com/arenaworks/arena-api/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUserService struct {
	lookupFn func(ctx context.Context, username string, limit int, full bool) (interface{}, error)
	listFn   func(ctx context.Context, first, after int) ([]dto.PublicUser, error)
	deleteFn func(ctx context.Context, user *model.User) (uint, error)
}

func (s *stubUserService) Lookup(ctx context.Context, username string, limit int, full bool) (interface{}, error) {
	return s.lookupFn(ctx, username, limit, full)
}

func (s *stubUserService) List(ctx context.Context, first, after int) ([]dto.PublicUser, error) {
	return s.listFn(ctx, first, after)
}

func (s *stubUserService) Update(ctx context.Context, user *model.User, input dto.UpdateUserInput) (*model.User, error) {
	return user, nil
}

func (s *stubUserService) Delete(ctx context.Context, user *model.User) (uint, error) {
	return s.deleteFn(ctx, user)
}

func (s *stubUserService) Activity(ctx context.Context, userID uint, first, after int) ([]model.Activity, error) {
	return nil, nil
}

func (s *stubUserService) UpdateAvatar(ctx context.Context, user *model.User, avatar *service.AvatarFile) (*model.User, error) {
	return user, nil
}

type stubScheduleService struct{}

func (s *stubScheduleService) Create(ctx context.Context, input dto.CreateScheduleInput) (*model.GameSchedule, error) {
	return nil, nil
}

func (s *stubScheduleService) List(ctx context.Context, status model.ScheduleStatus, first, after int) ([]model.GameSchedule, error) {
	return nil, nil
}

func (s *stubScheduleService) UpdateStatus(ctx context.Context, id uint, status model.ScheduleStatus) (*model.GameSchedule, error) {
	return nil, nil
}

func (s *stubScheduleService) GetGame(ctx context.Context, id uint) (*dto.GameResponse, error) {
	return nil, nil
}

func (s *stubScheduleService) Apply(ctx context.Context, user *model.User, scheduleID uint, team string) (*model.GameApplication, error) {
	return nil, nil
}

func (s *stubScheduleService) Withdraw(ctx context.Context, user *model.User, scheduleID uint) error {
	return nil
}

func (s *stubScheduleService) UserApplications(ctx context.Context, userID uint, first, after int) ([]model.GameApplication, error) {
	return nil, nil
}

func performRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLookupEmptyUsernameBadRequest(t *testing.T) {
	userService := &stubUserService{
		lookupFn: func(ctx context.Context, username string, limit int, full bool) (interface{}, error) {
			return nil, apperror.BadRequest("username must not be empty")
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	r := gin.New()
	r.GET("/api/users/lookup", h.Lookup)

	w := performRequest(r, http.MethodGet, "/api/users/lookup?username=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username must not be empty", decodeBody(t, w)["error"])
}

func TestLookupQueryDefaults(t *testing.T) {
	var gotLimit int
	var gotFull bool
	userService := &stubUserService{
		lookupFn: func(ctx context.Context, username string, limit int, full bool) (interface{}, error) {
			gotLimit = limit
			gotFull = full
			return []dto.LookupUserShort{{Username: "shadowfax", ID: 7}}, nil
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	r := gin.New()
	r.GET("/api/users/lookup", h.Lookup)

	w := performRequest(r, http.MethodGet, "/api/users/lookup?username=shadow&limit=abc&full=maybe")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.LookupDefaultLimit, gotLimit)
	assert.False(t, gotFull)
}

func TestShowSanitizesUser(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubScheduleService{}, 100000)

	email := "shadowfax@arena.local"
	target := &model.User{
		ID:       7,
		Username: "shadowfax",
		Email:    email,
		Role:     model.RoleUser,
		LinkedAccounts: []model.LinkedAccount{
			{Provider: "Twitch", Username: "shadowfax_tv"},
		},
	}

	r := gin.New()
	r.GET("/api/users/:user", func(c *gin.Context) {
		c.Set("target_user", target)
	}, h.Show)

	w := performRequest(r, http.MethodGet, "/api/users/shadowfax")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "shadowfax", body["username"])
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "created_at")
	assert.NotContains(t, body, "lastSigned")
	assert.NotContains(t, w.Body.String(), email)

	connections := body["connections"].([]interface{})
	require.Len(t, connections, 1)
	assert.Equal(t, "twitch", connections[0].(map[string]interface{})["provider"])
}

func TestListEnvelopeLinks(t *testing.T) {
	userService := &stubUserService{
		listFn: func(ctx context.Context, first, after int) ([]dto.PublicUser, error) {
			users := make([]dto.PublicUser, first)
			for i := range users {
				users[i] = dto.PublicUser{ID: uint(after + i + 1)}
			}
			return users, nil
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	r := gin.New()
	r.GET("/api/users", h.List)

	w := performRequest(r, http.MethodGet, "/api/users?first=5&after=40")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["data"], 5)

	links := body["pagination"].(map[string]interface{})
	assert.Contains(t, links["before"], "first=5&after=35")
	assert.Contains(t, links["after"], "first=5&after=45")
}

func TestListFirstPageHasNoBefore(t *testing.T) {
	userService := &stubUserService{
		listFn: func(ctx context.Context, first, after int) ([]dto.PublicUser, error) {
			return []dto.PublicUser{{ID: 1}}, nil
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	r := gin.New()
	r.GET("/api/users", h.List)

	w := performRequest(r, http.MethodGet, "/api/users")
	require.Equal(t, http.StatusOK, w.Code)

	links := decodeBody(t, w)["pagination"].(map[string]interface{})
	assert.Nil(t, links["before"])
	assert.Contains(t, links["after"], "first=20&after=20")
}

func TestDeleteReturnsRemovedID(t *testing.T) {
	userService := &stubUserService{
		deleteFn: func(ctx context.Context, user *model.User) (uint, error) {
			return user.ID, nil
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	target := &model.User{ID: 7, Username: "shadowfax", Role: model.RoleAdmin}
	r := gin.New()
	r.DELETE("/api/users/:user", func(c *gin.Context) {
		c.Set("target_user", target)
	}, h.Delete)

	w := performRequest(r, http.MethodDelete, "/api/users/7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), decodeBody(t, w)["id"])
}

func TestDeleteRoleGateSurfacesBadRequest(t *testing.T) {
	userService := &stubUserService{
		deleteFn: func(ctx context.Context, user *model.User) (uint, error) {
			return 0, apperror.BadRequest("insufficient role for account removal")
		},
	}
	h := NewUserHandler(userService, &stubScheduleService{}, 100000)

	target := &model.User{ID: 7, Username: "shadowfax", Role: model.RoleUser}
	r := gin.New()
	r.DELETE("/api/users/:user", func(c *gin.Context) {
		c.Set("target_user", target)
	}, h.Delete)

	w := performRequest(r, http.MethodDelete, "/api/users/7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient role for account removal", decodeBody(t, w)["error"])
}
