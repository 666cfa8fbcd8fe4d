package repository

import (
	"context"

	"github.com/arenaworks/arena-api/internal/model"
	"gorm.io/gorm"
)

type GameRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Game, error)
	Save(ctx context.Context, game *model.Game) error
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) FindByID(ctx context.Context, id uint) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).
		Preload("Schedule").
		First(&game, id).Error; err != nil {
		return nil, err
	}

	return &game, nil
}

func (r *gameRepository) Save(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}
