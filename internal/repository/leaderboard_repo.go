package repository

import (
	"context"

	"github.com/arenaworks/arena-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRepository interface {
	FindTop(ctx context.Context, first, after int) ([]model.UserStats, error)
	FindByUserID(ctx context.Context, userID uint) (*model.UserStats, error)
	RecordResult(ctx context.Context, result *model.UserGameStats) error
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

// FindTop returns one page of precomputed aggregates. Ordering is xp
// first with id as tie-breaker so a fixed snapshot always pages the same
// way.
func (r *leaderboardRepository) FindTop(ctx context.Context, first, after int) ([]model.UserStats, error) {
	var stats []model.UserStats
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("xp DESC, user_id ASC").
		Offset(after).
		Limit(first).
		Find(&stats).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *leaderboardRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Zero stats for users who never finished a game
			return &model.UserStats{UserID: userID, Level: 1}, nil
		}
		return nil, err
	}

	return &stats, nil
}

// RecordResult appends the per-game row and upserts the lifetime
// aggregates in one transaction.
func (r *leaderboardRepository) RecordResult(ctx context.Context, result *model.UserGameStats) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}

		wins, losses := 0, 1
		if result.Won {
			wins, losses = 1, 0
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"wins":   gorm.Expr("user_stats.wins + ?", wins),
				"losses": gorm.Expr("user_stats.losses + ?", losses),
				"xp":     gorm.Expr("user_stats.xp + ?", result.XP),
				"coins":  gorm.Expr("user_stats.coins + ?", result.Coins),
				"level":  gorm.Expr("GREATEST(user_stats.level, (user_stats.xp + ?) / 1000 + 1)", result.XP),
			}),
		}).Create(&model.UserStats{
			UserID: result.UserID,
			Wins:   wins,
			Losses: losses,
			XP:     result.XP,
			Coins:  result.Coins,
			Level:  result.XP/1000 + 1,
		}).Error
	})
}
