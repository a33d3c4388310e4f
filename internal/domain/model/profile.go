package model

import "time"

// Profile holds per-user settings, including the user's own executor API token.
//
// The token is encrypted at rest; ExecutorToken is only populated after the
// repository has decrypted it. HasExecutorToken is safe to expose to clients.
type Profile struct {
	UserID           string     `json:"user_id"              db:"user_id"`
	FullName         *string    `json:"full_name,omitempty"  db:"full_name"`
	ExecutorToken    string     `json:"-"                    db:"-"`
	HasExecutorToken bool       `json:"has_executor_token"   db:"-"`
	CreatedAt        time.Time  `json:"created_at"           db:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
