package domain

// Scope says which credential type produced a principal. A session principal
// may act across any organization it is a member of; an API key principal is
// bound to exactly one organization.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeAPIKey  Scope = "api_key"
)

// Principal is the authenticated identity resolved for one request.
type Principal struct {
	// SubjectID is the user id for session scope, the key id for API key scope.
	SubjectID string
	Scope     Scope
	// OrgID and RoleID are set only for API key scope.
	OrgID  string
	RoleID string
	// SecondFactorSatisfied is unconditionally true for API key scope; for
	// session scope it reflects whether the token carries OTP proof.
	SecondFactorSatisfied bool
}

// IsAPIKey reports whether the principal was authenticated with an API key.
func (p *Principal) IsAPIKey() bool {
	return p.Scope == ScopeAPIKey
}
