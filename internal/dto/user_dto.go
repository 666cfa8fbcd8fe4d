package dto

import (
	"strings"
	"time"

	"github.com/arenaworks/arena-api/internal/model"
)

// Connection is the projected linked-account entry: provider name is
// always lowercased on the way out.
type Connection struct {
	Username string `json:"username"`
	Provider string `json:"provider"`
}

// LookupUser is the full-shape lookup result. When the caller did not ask
// for full records it is reduced to LookupUserShort after the connection
// transform has run.
type LookupUser struct {
	ID          uint         `json:"id"`
	Username    string       `json:"username"`
	Avatar      *string      `json:"avatar,omitempty"`
	Role        model.Role   `json:"role"`
	Connections []Connection `json:"connections"`
}

type LookupUserShort struct {
	Username string `json:"username"`
	ID       uint   `json:"id"`
}

// PublicUser is the sanitized single-user response: no email, no sign-in
// or created/updated timestamps.
type PublicUser struct {
	ID          uint         `json:"id"`
	Username    string       `json:"username"`
	Role        model.Role   `json:"role"`
	Avatar      *string      `json:"avatar,omitempty"`
	Connections []Connection `json:"connections"`
}

// UpdateUserInput is a partial merge: only non-nil fields touch the
// stored record.
type UpdateUserInput struct {
	Username   *string     `json:"username" binding:"omitempty,min=3,max=50"`
	Email      *string     `json:"email" binding:"omitempty,email"`
	Password   *string     `json:"password" binding:"omitempty,min=8"`
	Role       *model.Role `json:"role"`
	Token      *string     `json:"token"`
	LastSigned *time.Time  `json:"lastSigned"`
}

// NewConnections maps linked accounts into their projected form.
func NewConnections(accounts []model.LinkedAccount) []Connection {
	connections := make([]Connection, 0, len(accounts))
	for _, a := range accounts {
		connections = append(connections, Connection{
			Username: a.Username,
			Provider: strings.ToLower(a.Provider),
		})
	}
	return connections
}

// NewPublicUser builds the sanitized view of a stored user.
func NewPublicUser(u *model.User) PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Avatar:      u.AvatarURL,
		Connections: NewConnections(u.LinkedAccounts),
	}
}
