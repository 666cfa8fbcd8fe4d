package service

import (
	"context"

	"github.com/arenaworks/arena-api/internal/dto"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, first, after int) ([]dto.LeaderboardEntry, error)
	RecordResult(ctx context.Context, userID, gameID uint, won bool, xp, coins int) error
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, first, after int) ([]dto.LeaderboardEntry, error) {
	stats, err := s.repo.FindTop(ctx, first, after)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(stats))
	for _, stat := range stats {
		entries = append(entries, dto.LeaderboardEntry{
			Username: stat.User.Username,
			Avatar:   stat.User.AvatarURL,
			Wins:     stat.Wins,
			Losses:   stat.Losses,
			XP:       stat.XP,
			Coins:    stat.Coins,
			Level:    stat.Level,
		})
	}

	return entries, nil
}

func (s *leaderboardService) RecordResult(ctx context.Context, userID, gameID uint, won bool, xp, coins int) error {
	return s.repo.RecordResult(ctx, &model.UserGameStats{
		UserID: userID,
		GameID: gameID,
		Won:    won,
		XP:     xp,
		Coins:  coins,
	})
}
