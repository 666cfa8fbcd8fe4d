package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

// fakeUserRepo only backs the lookups the middleware performs; the
// embedded interface panics on anything else, which would flag an
// unexpected repository call.
type fakeUserRepo struct {
	repository.UserRepository
	users []*model.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	m := NewAuthMiddleware(&fakeUserRepo{}, testSecret)

	r := gin.New()
	r.GET("/ping", m.RequireAuth(), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthBadToken(t *testing.T) {
	m := NewAuthMiddleware(&fakeUserRepo{}, testSecret)

	r := gin.New()
	r.GET("/ping", m.RequireAuth(), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthSetsUserID(t *testing.T) {
	m := NewAuthMiddleware(&fakeUserRepo{}, testSecret)

	var gotUserID string
	r := gin.New()
	r.GET("/ping", m.RequireAuth(), func(c *gin.Context) {
		gotUserID = c.GetString("user_id")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", gotUserID)
}

func TestBindUserResolvesIDAndUsername(t *testing.T) {
	stored := &model.User{ID: 7, Username: "shadowfax"}
	m := NewAuthMiddleware(&fakeUserRepo{users: []*model.User{stored}}, testSecret)

	r := gin.New()
	r.GET("/users/:user", m.BindUser(), func(c *gin.Context) {
		target := TargetUser(c)
		require.NotNil(t, target)
		c.JSON(http.StatusOK, gin.H{"id": target.ID})
	})

	for _, path := range []string{"/users/7", "/users/shadowfax"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/nobody", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireSelfOrRole(t *testing.T) {
	target := &model.User{ID: 7, Username: "shadowfax", Role: model.RoleUser}
	caller := &model.User{ID: 8, Username: "ember", Role: model.RoleUser}
	admin := &model.User{ID: 9, Username: "root", Role: model.RoleAdmin}

	m := NewAuthMiddleware(&fakeUserRepo{users: []*model.User{target, caller, admin}}, testSecret)

	r := gin.New()
	r.POST("/users/:user", m.RequireAuth(), m.BindUser(), m.RequireSelfOrRole(model.RoleModerator), okHandler)

	cases := []struct {
		name   string
		caller uint
		want   int
	}{
		{"self", 7, http.StatusOK},
		{"peer", 8, http.StatusForbidden},
		{"admin", 9, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/7", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, tc.caller))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
