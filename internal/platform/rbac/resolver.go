// Package rbac resolves permission checks against organization roles.
// Resolution is pure: identical inputs always yield identical decisions,
// and absence of a role means the unrestricted owner case.
package rbac

import (
	"platform-control-plane/backend/internal/autherr"
)

// Capability names an administrative area subject to permission checks.
type Capability string

const (
	CapabilityOrganization Capability = "organization"
	CapabilityBilling      Capability = "billing"
	CapabilityMembers      Capability = "members"
	CapabilityProject      Capability = "project"
	CapabilityAPIKeys      Capability = "api_keys"
	CapabilityCredentials  Capability = "credentials"
)

// Level is an access level for a general capability, totally ordered
// None < Read < ReadWrite.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	LevelReadWrite
)

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelReadWrite:
		return "read_write"
	default:
		return "none"
	}
}

// ParseLevel maps a stored level string to its Level. Unknown strings map
// to LevelNone, so a corrupted row can only reduce access.
func ParseLevel(s string) Level {
	switch s {
	case "read":
		return LevelRead
	case "read_write":
		return LevelReadWrite
	default:
		return LevelNone
	}
}

// ClusterLevel is the environment-management permission axis, totally
// ordered ReadEnvironment < CreateEnvironment < FullAccess. It is
// independent of the general capability levels.
type ClusterLevel int

const (
	ClusterReadEnvironment ClusterLevel = iota
	ClusterCreateEnvironment
	ClusterFullAccess
)

func (c ClusterLevel) String() string {
	switch c {
	case ClusterCreateEnvironment:
		return "create_environment"
	case ClusterFullAccess:
		return "full_access"
	default:
		return "read_environment"
	}
}

// ParseClusterLevel maps a stored cluster permission string to its
// ClusterLevel. Unknown strings map to the weakest level.
func ParseClusterLevel(s string) ClusterLevel {
	switch s {
	case "create_environment":
		return ClusterCreateEnvironment
	case "full_access":
		return ClusterFullAccess
	default:
		return ClusterReadEnvironment
	}
}

// Role is the permission payload of an organization role: one cluster
// permission plus per-capability levels. A capability absent from General
// resolves to LevelNone.
type Role struct {
	ClusterPermission ClusterLevel
	General           map[Capability]Level
}

// GeneralLevel returns the role's level for the capability. A nil role is
// the unrestricted owner case and resolves to ReadWrite for every capability.
func GeneralLevel(role *Role, capability Capability) Level {
	if role == nil {
		return LevelReadWrite
	}
	return role.General[capability]
}

// HasGeneral reports whether the role grants at least required on capability.
func HasGeneral(role *Role, capability Capability, required Level) bool {
	return GeneralLevel(role, capability) >= required
}

// VerifyGeneral is HasGeneral with a typed rejection: an insufficient level
// fails with a forbidden error naming the capability.
func VerifyGeneral(role *Role, capability Capability, required Level) error {
	if HasGeneral(role, capability, required) {
		return nil
	}
	return autherr.Forbidden("insufficient permission for " + string(capability))
}

// ClusterLevelOf returns the role's cluster permission; nil role resolves
// to FullAccess.
func ClusterLevelOf(role *Role) ClusterLevel {
	if role == nil {
		return ClusterFullAccess
	}
	return role.ClusterPermission
}

// HasCluster reports whether the role grants at least the required cluster level.
func HasCluster(role *Role, required ClusterLevel) bool {
	return ClusterLevelOf(role) >= required
}

// VerifyCluster is HasCluster with a typed rejection.
func VerifyCluster(role *Role, required ClusterLevel) error {
	if HasCluster(role, required) {
		return nil
	}
	return autherr.Forbidden("insufficient cluster permission")
}
