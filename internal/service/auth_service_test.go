package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{users: []*model.User{
		{ID: 1, Username: "taken", Email: "taken@arena.local"},
	}}
	svc := NewAuthService(repo, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), dto.RegisterInput{
		Username: "fresh",
		Email:    "taken@arena.local",
		Password: "password123",
	})
	assert.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestRegisterIssuesVerificationToken(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewAuthService(repo, testSecret, time.Hour)

	user, err := svc.Register(context.Background(), dto.RegisterInput{
		Username: "fresh",
		Email:    "fresh@arena.local",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RolePending, user.Role)
	assert.Len(t, repo.verifications, 1)
	assert.NotEmpty(t, repo.verifications[0].Token)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &fakeUserRepo{users: []*model.User{
		{ID: 1, Email: "kai@arena.local", PasswordHash: hashFor(t, "correct-horse")},
	}}
	svc := NewAuthService(repo, testSecret, time.Hour)

	_, err := svc.Login(context.Background(), dto.LoginInput{
		Email:    "kai@arena.local",
		Password: "wrong",
	})
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestLoginIssuesToken(t *testing.T) {
	user := &model.User{ID: 42, Username: "kai", Email: "kai@arena.local", PasswordHash: hashFor(t, "correct-horse")}
	repo := &fakeUserRepo{users: []*model.User{user}}
	svc := NewAuthService(repo, testSecret, time.Hour)

	res, err := svc.Login(context.Background(), dto.LoginInput{
		Email:    "kai@arena.local",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.NotNil(t, user.LastSigned)

	token, err := jwt.ParseWithClaims(res.Token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, strconv.Itoa(42), claims.Subject)

	// login leaves an audit row
	assert.Len(t, repo.activities, 1)
	assert.Equal(t, "auth.login", repo.activities[0].Verb)
}

func TestVerifyPromotesPendingUser(t *testing.T) {
	user := &model.User{ID: 5, Role: model.RolePending}
	repo := &fakeUserRepo{
		users:         []*model.User{user},
		verifications: []*model.EmailVerification{{ID: 1, UserID: 5, Token: "tok"}},
	}
	svc := NewAuthService(repo, testSecret, time.Hour)

	assert.NoError(t, svc.Verify(context.Background(), "tok"))
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Empty(t, repo.verifications)
}

func TestConfirmPasswordResetExpired(t *testing.T) {
	repo := &fakeUserRepo{
		users: []*model.User{{ID: 5}},
		resets: []*model.PasswordReset{
			{ID: 1, UserID: 5, Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)},
		},
	}
	svc := NewAuthService(repo, testSecret, time.Hour)

	err := svc.ConfirmPasswordReset(context.Background(), "tok", "newpassword1")
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestConfirmPasswordReset(t *testing.T) {
	user := &model.User{ID: 5, PasswordHash: hashFor(t, "old")}
	repo := &fakeUserRepo{
		users: []*model.User{user},
		resets: []*model.PasswordReset{
			{ID: 1, UserID: 5, Token: "tok", ExpiresAt: time.Now().Add(time.Minute)},
		},
	}
	svc := NewAuthService(repo, testSecret, time.Hour)

	assert.NoError(t, svc.ConfirmPasswordReset(context.Background(), "tok", "newpassword1"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword1")))
	assert.Empty(t, repo.resets)
}
