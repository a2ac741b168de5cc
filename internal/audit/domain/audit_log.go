package domain

import "time"

// AuditLog is one recorded security-relevant event (login, key use, two-factor
// change). Metadata is a small JSON or plain-text blob; never credentials.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
