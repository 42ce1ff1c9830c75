package types

import "time"

// RefreshToken is a server-stored opaque token exchanged for new access
// tokens. Rotated on every refresh.
type RefreshToken struct {
	Token     string    `json:"-" db:"token"`
	UserID    int       `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"-" db:"expires_at"`
}
