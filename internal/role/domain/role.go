package domain

import "time"

// Role names seeded by the initial migration. The service reads the names it
// needs from configuration rather than these constants.
const (
	NameAdmin = "Admin"
	NameUser  = "User"
)

// Role is a named permission set assigned to every user.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
