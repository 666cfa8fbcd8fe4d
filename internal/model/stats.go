package model

import "time"

// UserStats carries the precomputed lifetime aggregates the leaderboard
// is ranked on. Rows are upserted by the game-result pipeline, never
// recalculated at read time.
type UserStats struct {
	UserID    uint      `gorm:"primaryKey" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Wins      int       `gorm:"default:0" json:"wins"`
	Losses    int       `gorm:"default:0" json:"losses"`
	XP        int       `gorm:"column:xp;default:0" json:"xp"`
	Coins     int       `gorm:"default:0" json:"coins"`
	Level     int       `gorm:"default:1" json:"level"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// UserGameStats is the per-game breakdown behind UserStats.
type UserGameStats struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	UserID uint `gorm:"index:idx_user_game,priority:1;not null" json:"-"`
	GameID uint `gorm:"index:idx_user_game,priority:2;not null" json:"game_id"`
	Won    bool `gorm:"default:false" json:"won"`
	XP     int  `gorm:"column:xp;default:0" json:"xp"`
	Coins  int  `gorm:"default:0" json:"coins"`
}
