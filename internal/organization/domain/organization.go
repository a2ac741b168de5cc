package domain

import (
	"errors"
	"time"

	"platform-control-plane/backend/internal/platform/rbac"
)

// Organization is the tenant root. Roles and memberships hang off it.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Validate validates the organization for persistence.
func (o *Organization) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// OrganizationRole is a named permission set owned by one organization.
// Memberships and API keys reference roles by id; the permission payload is
// never copied onto them.
type OrganizationRole struct {
	ID        string
	OrgID     string
	Name      string
	Role      rbac.Role
	CreatedAt time.Time
}

// Validate validates the role for persistence.
func (r *OrganizationRole) Validate() error {
	if r.OrgID == "" {
		return errors.New("org id is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
