package repository

import (
	"context"

	"github.com/arenaworks/arena-api/internal/model"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(ctx context.Context, game *model.Game, schedule *model.GameSchedule) error
	FindByID(ctx context.Context, id uint) (*model.GameSchedule, error)
	FindWithPaging(ctx context.Context, status model.ScheduleStatus, first, after int) ([]model.GameSchedule, error)
	Save(ctx context.Context, schedule *model.GameSchedule) error

	CreateApplication(ctx context.Context, application *model.GameApplication) error
	DeleteApplication(ctx context.Context, userID, scheduleID uint) error
	FindApplication(ctx context.Context, userID, scheduleID uint) (*model.GameApplication, error)
	FindApplications(ctx context.Context, scheduleID uint) ([]model.GameApplication, error)
	FindUserApplications(ctx context.Context, userID uint, first, after int) ([]model.GameApplication, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Create persists the game row and its schedule together; a schedule
// never exists without its game.
func (r *scheduleRepository) Create(ctx context.Context, game *model.Game, schedule *model.GameSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return err
		}

		schedule.GameID = game.ID
		return tx.Create(schedule).Error
	})
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*model.GameSchedule, error) {
	var schedule model.GameSchedule
	if err := r.db.WithContext(ctx).
		Preload("Game").
		First(&schedule, id).Error; err != nil {
		return nil, err
	}

	return &schedule, nil
}

func (r *scheduleRepository) FindWithPaging(ctx context.Context, status model.ScheduleStatus, first, after int) ([]model.GameSchedule, error) {
	query := r.db.WithContext(ctx).Preload("Game")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var schedules []model.GameSchedule
	if err := query.
		Order("starts_at ASC, id ASC").
		Offset(after).
		Limit(first).
		Find(&schedules).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) Save(ctx context.Context, schedule *model.GameSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepository) CreateApplication(ctx context.Context, application *model.GameApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *scheduleRepository) DeleteApplication(ctx context.Context, userID, scheduleID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_id = ?", userID, scheduleID).
		Delete(&model.GameApplication{}).Error
}

func (r *scheduleRepository) FindApplication(ctx context.Context, userID, scheduleID uint) (*model.GameApplication, error) {
	var application model.GameApplication
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_id = ?", userID, scheduleID).
		First(&application).Error; err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *scheduleRepository) FindApplications(ctx context.Context, scheduleID uint) ([]model.GameApplication, error) {
	var applications []model.GameApplication
	if err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("id ASC").
		Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *scheduleRepository) FindUserApplications(ctx context.Context, userID uint, first, after int) ([]model.GameApplication, error) {
	var applications []model.GameApplication
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(after).
		Limit(first).
		Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}
