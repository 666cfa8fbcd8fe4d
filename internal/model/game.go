package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DeletedPlayerName is the sentinel username written into historical game
// rosters when the underlying account is removed. The zero id marks the
// slot as belonging to a deleted user for downstream consumers.
const DeletedPlayerName = "Competitor"

// StoragePlayer is one roster slot inside Game.Storage. It is a
// denormalized snapshot of participant display data, independent from the
// relational GameApplication rows.
type StoragePlayer struct {
	ID       uint   `json:"id"`
	Team     string `json:"team"`
	Username string `json:"username"`
}

// GameStorage is the shape of the Game.Storage JSONB column. Players is
// keyed by user id rendered as a decimal string.
type GameStorage struct {
	Players map[string]StoragePlayer `json:"players"`
}

type Game struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:100;not null" json:"title"`
	Storage   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"storage"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Schedule *GameSchedule `gorm:"foreignKey:GameID" json:"schedule,omitempty"`
}

// DecodeStorage unmarshals the roster blob. A missing or empty column
// yields a storage with a non-nil empty player map.
func (g *Game) DecodeStorage() (GameStorage, error) {
	storage := GameStorage{Players: map[string]StoragePlayer{}}
	if len(g.Storage) == 0 {
		return storage, nil
	}
	if err := json.Unmarshal(g.Storage, &storage); err != nil {
		return storage, err
	}
	if storage.Players == nil {
		storage.Players = map[string]StoragePlayer{}
	}
	return storage, nil
}

// EncodeStorage marshals the roster back into the JSONB column.
func (g *Game) EncodeStorage(storage GameStorage) error {
	raw, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	g.Storage = datatypes.JSON(raw)
	return nil
}

type ScheduleStatus string

const (
	StatusScheduled ScheduleStatus = "SCHEDULED"
	StatusActive    ScheduleStatus = "ACTIVE"
	StatusEnded     ScheduleStatus = "ENDED"
)

type GameSchedule struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GameID    uint           `gorm:"uniqueIndex;not null" json:"game_id"`
	Game      *Game          `gorm:"foreignKey:GameID" json:"game,omitempty"`
	StartsAt  time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt    *time.Time     `json:"ends_at,omitempty"`
	Status    ScheduleStatus `gorm:"size:20;default:'SCHEDULED'" json:"status"`
	Setup     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"setup"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Applications []GameApplication `gorm:"foreignKey:ScheduleID" json:"-"`
}

type GameApplication struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_app_user_schedule,unique,priority:1;not null" json:"user_id"`
	ScheduleID uint      `gorm:"index:idx_app_user_schedule,unique,priority:2;not null" json:"schedule_id"`
	Team       string    `gorm:"size:50" json:"team"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
