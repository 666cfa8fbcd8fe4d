package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/arenaworks/arena-api/pkg/apperror"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScheduleService interface {
	Create(ctx context.Context, input dto.CreateScheduleInput) (*model.GameSchedule, error)
	List(ctx context.Context, status model.ScheduleStatus, first, after int) ([]model.GameSchedule, error)
	UpdateStatus(ctx context.Context, id uint, status model.ScheduleStatus) (*model.GameSchedule, error)
	GetGame(ctx context.Context, id uint) (*dto.GameResponse, error)
	Apply(ctx context.Context, user *model.User, scheduleID uint, team string) (*model.GameApplication, error)
	Withdraw(ctx context.Context, user *model.User, scheduleID uint) error
	UserApplications(ctx context.Context, userID uint, first, after int) ([]model.GameApplication, error)
}

type scheduleService struct {
	repo     repository.ScheduleRepository
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
}

func NewScheduleService(repo repository.ScheduleRepository, gameRepo repository.GameRepository, userRepo repository.UserRepository) ScheduleService {
	return &scheduleService{
		repo:     repo,
		gameRepo: gameRepo,
		userRepo: userRepo,
	}
}

func (s *scheduleService) Create(ctx context.Context, input dto.CreateScheduleInput) (*model.GameSchedule, error) {
	game := &model.Game{
		Title:   input.Title,
		Storage: datatypes.JSON([]byte(`{}`)),
	}

	setup := datatypes.JSON([]byte(`{}`))
	if len(input.Setup) > 0 {
		setup = datatypes.JSON(input.Setup)
	}

	schedule := &model.GameSchedule{
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		Status:   model.StatusScheduled,
		Setup:    setup,
	}

	if err := s.repo.Create(ctx, game, schedule); err != nil {
		return nil, err
	}

	schedule.Game = game
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context, status model.ScheduleStatus, first, after int) ([]model.GameSchedule, error) {
	return s.repo.FindWithPaging(ctx, status, first, after)
}

// UpdateStatus moves a schedule along SCHEDULED -> ACTIVE -> ENDED. On
// activation the relational applications are snapshotted into the game's
// denormalized storage.players map.
func (s *scheduleService) UpdateStatus(ctx context.Context, id uint, status model.ScheduleStatus) (*model.GameSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("schedule not found")
		}
		return nil, err
	}

	valid := (schedule.Status == model.StatusScheduled && status == model.StatusActive) ||
		(schedule.Status == model.StatusActive && status == model.StatusEnded)
	if !valid {
		return nil, apperror.BadRequest("invalid status transition")
	}

	if status == model.StatusActive {
		if err := s.snapshotRoster(ctx, schedule); err != nil {
			return nil, err
		}
	}

	schedule.Status = status
	if err := s.repo.Save(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *scheduleService) snapshotRoster(ctx context.Context, schedule *model.GameSchedule) error {
	applications, err := s.repo.FindApplications(ctx, schedule.ID)
	if err != nil {
		return err
	}

	game, err := s.gameRepo.FindByID(ctx, schedule.GameID)
	if err != nil {
		return err
	}

	storage, err := game.DecodeStorage()
	if err != nil {
		return err
	}

	for _, application := range applications {
		user, err := s.userRepo.FindByID(ctx, application.UserID)
		if err != nil {
			return err
		}
		key := strconv.FormatUint(uint64(user.ID), 10)
		storage.Players[key] = model.StoragePlayer{
			ID:       user.ID,
			Team:     application.Team,
			Username: user.Username,
		}
	}

	if err := game.EncodeStorage(storage); err != nil {
		return err
	}

	return s.gameRepo.Save(ctx, game)
}

func (s *scheduleService) GetGame(ctx context.Context, id uint) (*dto.GameResponse, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("game not found")
		}
		return nil, err
	}

	storage, err := game.DecodeStorage()
	if err != nil {
		return nil, err
	}

	return &dto.GameResponse{
		ID:      game.ID,
		Title:   game.Title,
		Players: storage.Players,
	}, nil
}

func (s *scheduleService) Apply(ctx context.Context, user *model.User, scheduleID uint, team string) (*model.GameApplication, error) {
	schedule, err := s.repo.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("schedule not found")
		}
		return nil, err
	}

	if schedule.Status != model.StatusScheduled {
		return nil, apperror.BadRequest("applications are closed for this game")
	}

	if _, err := s.repo.FindApplication(ctx, user.ID, scheduleID); err == nil {
		return nil, apperror.Conflict("already applied to this game")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := &model.GameApplication{
		UserID:     user.ID,
		ScheduleID: scheduleID,
		Team:       team,
	}
	if err := s.repo.CreateApplication(ctx, application); err != nil {
		return nil, err
	}

	detail := ""
	if schedule.Game != nil {
		detail = schedule.Game.Title
	}
	if err := s.userRepo.CreateActivity(ctx, &model.Activity{
		UserID: user.ID,
		Verb:   "game.apply",
		Detail: detail,
	}); err != nil {
		return nil, err
	}

	return application, nil
}

func (s *scheduleService) Withdraw(ctx context.Context, user *model.User, scheduleID uint) error {
	if _, err := s.repo.FindApplication(ctx, user.ID, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("application not found")
		}
		return err
	}

	if err := s.repo.DeleteApplication(ctx, user.ID, scheduleID); err != nil {
		return err
	}

	return s.userRepo.CreateActivity(ctx, &model.Activity{
		UserID: user.ID,
		Verb:   "game.withdraw",
	})
}

func (s *scheduleService) UserApplications(ctx context.Context, userID uint, first, after int) ([]model.GameApplication, error) {
	return s.repo.FindUserApplications(ctx, userID, first, after)
}
