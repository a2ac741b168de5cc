package domain

import (
	"time"
)

// Membership links a user to an organization. RoleID references an
// organization role; an empty RoleID means the member is unrestricted
// (the owner case).
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	RoleID    string
	CreatedAt time.Time
}
