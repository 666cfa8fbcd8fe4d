package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/arenaworks/arena-api/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordResetTTL = time.Hour

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.PublicUser, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Verify(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

type authService struct {
	repo        repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
}

func NewAuthService(repo repository.UserRepository, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		repo:        repo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.PublicUser, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.Conflict("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         model.RolePending,
	}

	if err := s.repo.Create(ctx, user, &model.UserProfile{}, &model.UserStats{Level: 1}); err != nil {
		return nil, err
	}

	verification := &model.EmailVerification{
		UserID: user.ID,
		Token:  uuid.NewString(),
	}
	if err := s.repo.CreateEmailVerification(ctx, verification); err != nil {
		return nil, err
	}
	// Mail delivery is handled by an external worker; only the token is
	// persisted here.
	log.Printf("issued verification token for user %d", user.ID)

	public := dto.NewPublicUser(user)
	return &public, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperror.New(401, "invalid email or password", apperror.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(401, "invalid email or password", apperror.ErrUnauthorized)
	}

	now := time.Now()
	user.LastSigned = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.repo.CreateActivity(ctx, &model.Activity{
		UserID: user.ID,
		Verb:   "auth.login",
	}); err != nil {
		return nil, err
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewPublicUser(user),
	}, nil
}

func (s *authService) Verify(ctx context.Context, token string) error {
	verification, err := s.repo.FindEmailVerification(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("verification token not found")
		}
		return err
	}

	user, err := s.repo.FindByID(ctx, verification.UserID)
	if err != nil {
		return err
	}

	if user.Role == model.RolePending {
		user.Role = model.RoleUser
		if err := s.repo.Save(ctx, user); err != nil {
			return err
		}
	}

	return s.repo.DeleteEmailVerification(ctx, verification.ID)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the address exists
			return nil
		}
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(passwordResetTTL),
	}
	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	log.Printf("issued password reset token for user %d", user.ID)
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	reset, err := s.repo.FindPasswordReset(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("reset token not found")
		}
		return err
	}

	if time.Now().After(reset.ExpiresAt) {
		return apperror.BadRequest("reset token expired")
	}

	user, err := s.repo.FindByID(ctx, reset.UserID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.repo.Save(ctx, user); err != nil {
		return err
	}

	return s.repo.DeletePasswordReset(ctx, reset.ID)
}
