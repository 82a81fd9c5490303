package user

import "time"

// User represents a directory entry: identity plus roster membership.
// For role "student" the (class, year, roll_number) triple defines the
// roster used by attendance reconciliation; other roles leave them unset.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Class        string    `json:"class,omitempty"`
	Year         *int      `json:"year,omitempty"`
	RollNumber   *string   `json:"rollNumber,omitempty"`
	Photo        string    `json:"photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
