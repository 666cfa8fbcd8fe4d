package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/arenaworks/arena-api/pkg/apperror"
	"github.com/arenaworks/arena-api/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	LookupDefaultLimit = 50
	LookupMaxLimit     = 50
)

type UserService interface {
	Lookup(ctx context.Context, username string, limit int, full bool) (interface{}, error)
	List(ctx context.Context, first, after int) ([]dto.PublicUser, error)
	Update(ctx context.Context, user *model.User, input dto.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, user *model.User) (uint, error)
	Activity(ctx context.Context, userID uint, first, after int) ([]model.Activity, error)
	UpdateAvatar(ctx context.Context, user *model.User, avatar *AvatarFile) (*model.User, error)
}

type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type userService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
}

func NewUserService(repo repository.UserRepository, imageStorage storage.ImageStorage) UserService {
	return &userService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

// Lookup runs a case-insensitive partial username search. With full=false
// the result is the {username,id} projection; the projection runs after
// the connection transform so the fuller records are already normalized
// when fields get dropped.
func (s *userService) Lookup(ctx context.Context, username string, limit int, full bool) (interface{}, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.BadRequest("username must not be empty")
	}

	if limit < 1 || limit > LookupMaxLimit {
		limit = LookupDefaultLimit
	}

	users, err := s.repo.FindLikeUsername(ctx, username, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]dto.LookupUser, 0, len(users))
	for i := range users {
		matches = append(matches, dto.LookupUser{
			ID:          users[i].ID,
			Username:    users[i].Username,
			Avatar:      users[i].AvatarURL,
			Role:        users[i].Role,
			Connections: dto.NewConnections(users[i].LinkedAccounts),
		})
	}

	if full {
		return matches, nil
	}

	short := make([]dto.LookupUserShort, 0, len(matches))
	for _, m := range matches {
		short = append(short, dto.LookupUserShort{Username: m.Username, ID: m.ID})
	}
	return short, nil
}

func (s *userService) List(ctx context.Context, first, after int) ([]dto.PublicUser, error) {
	users, err := s.repo.FindWithPaging(ctx, first, after)
	if err != nil {
		return nil, err
	}

	page := make([]dto.PublicUser, 0, len(users))
	for i := range users {
		page = append(page, dto.NewPublicUser(&users[i]))
	}
	return page, nil
}

// Update merges the provided fields onto the stored user. Fields absent
// from the input are untouched; a username already owned by a different
// user is a conflict; passwords are hashed before they reach the row.
func (s *userService) Update(ctx context.Context, user *model.User, input dto.UpdateUserInput) (*model.User, error) {
	if input.Username != nil {
		existing, err := s.repo.FindByUsername(ctx, *input.Username)
		if err == nil && existing.ID != user.ID {
			return nil, apperror.Conflict("username already taken")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *input.Username
	}

	if input.Email != nil {
		user.Email = *input.Email
	}

	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if input.Role != nil {
		user.Role = *input.Role
	}

	if input.Token != nil {
		user.Token = input.Token
	}

	if input.LastSigned != nil {
		user.LastSigned = input.LastSigned
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.repo.CreateActivity(ctx, &model.Activity{
		UserID: user.ID,
		Verb:   "user.update",
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete runs the cascading removal. The bound user's role must sit
// strictly above MODERATOR; anything at or below fails up front and
// nothing is touched.
func (s *userService) Delete(ctx context.Context, user *model.User) (uint, error) {
	if user.Role <= model.RoleModerator {
		return 0, apperror.BadRequest("insufficient role for account removal")
	}

	if err := s.repo.DeleteWithDependents(ctx, user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

func (s *userService) Activity(ctx context.Context, userID uint, first, after int) ([]model.Activity, error) {
	return s.repo.FindActivity(ctx, userID, first, after)
}

func (s *userService) UpdateAvatar(ctx context.Context, user *model.User, avatar *AvatarFile) (*model.User, error) {
	if avatar == nil || avatar.Reader == nil {
		return nil, apperror.BadRequest("avatar file is required")
	}
	if s.imageStorage == nil {
		return nil, apperror.New(500, "avatar storage is not configured", apperror.ErrInternal)
	}

	url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = &url
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
