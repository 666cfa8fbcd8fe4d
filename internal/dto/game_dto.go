package dto

import (
	"encoding/json"
	"time"

	"github.com/arenaworks/arena-api/internal/model"
)

type CreateScheduleInput struct {
	Title    string          `json:"title" binding:"required,max=100"`
	StartsAt time.Time       `json:"starts_at" binding:"required"`
	EndsAt   *time.Time      `json:"ends_at"`
	Setup    json.RawMessage `json:"setup"`
}

type UpdateStatusInput struct {
	Status model.ScheduleStatus `json:"status" binding:"required,oneof=SCHEDULED ACTIVE ENDED"`
}

type ApplyInput struct {
	Team string `json:"team" binding:"required,max=50"`
}

type ResultInput struct {
	UserID uint `json:"user_id" binding:"required"`
	Won    bool `json:"won"`
	XP     int  `json:"xp" binding:"min=0"`
	Coins  int  `json:"coins" binding:"min=0"`
}

// GameResponse pairs a game with its decoded roster so clients never
// have to parse the raw storage blob.
type GameResponse struct {
	ID      uint                           `json:"id"`
	Title   string                         `json:"title"`
	Players map[string]model.StoragePlayer `json:"players"`
}

// LeaderboardEntry is one ranked row of precomputed aggregates.
type LeaderboardEntry struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	XP       int     `json:"xp"`
	Coins    int     `json:"coins"`
	Level    int     `json:"level"`
}
