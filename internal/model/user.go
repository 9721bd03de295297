package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Avatar struct {
	Key string `json:"public_id,omitempty"`
	URL string `json:"url,omitempty"`
}

// User is the identity record owned by the credential store. The password
// hash never leaves the server: it is excluded from JSON so cached session
// snapshots and API payloads cannot carry it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       Avatar    `json:"avatar"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	Courses      []string  `json:"courses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) Enrolled(courseID string) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// PendingUser is the not-yet-persisted registration embedded in an
// activation ticket. The password is already hashed at registration time so
// only the hash travels inside the signed ticket.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
