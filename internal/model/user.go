package model

import (
	"time"
)

// Role is an ordered privilege level. Comparisons between roles rely on
// the integer ordering, so new roles must keep the order intact.
type Role int

const (
	RolePending Role = iota
	RoleUser
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RolePending:
		return "PENDING"
	case RoleUser:
		return "USER"
	case RoleModerator:
		return "MODERATOR"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         Role       `gorm:"default:0" json:"role"`
	AvatarURL    *string    `gorm:"type:text" json:"avatar,omitempty"`
	Token        *string    `gorm:"size:255" json:"-"`
	LastSigned   *time.Time `json:"lastSigned,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	LinkedAccounts []LinkedAccount   `gorm:"foreignKey:UserID" json:"connections,omitempty"`
	Applications   []GameApplication `gorm:"foreignKey:UserID" json:"-"`
	Activities     []Activity        `gorm:"foreignKey:UserID" json:"-"`
}

// LinkedAccount is an external identity (discord, steam, twitch, ...)
// attached to a user, rendered as "connections" in API responses.
type LinkedAccount struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	UserID   uint   `gorm:"index;not null" json:"-"`
	Username string `gorm:"size:100;not null" json:"username"`
	Provider string `gorm:"size:50;not null" json:"provider"`
}

type UserProfile struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	Bio       *string   `gorm:"type:text" json:"bio,omitempty"`
	Country   *string   `gorm:"size:50" json:"country,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type EmailOptIn struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	News      bool      `gorm:"default:false" json:"news"`
	Reminders bool      `gorm:"default:true" json:"reminders"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

type EmailVerification struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// Activity is an append-only audit row (login, profile update, game
// application and so on).
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Verb      string    `gorm:"size:50;not null" json:"verb"`
	Detail    string    `gorm:"size:255" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
