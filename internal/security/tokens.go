package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned when a token is malformed or its signature does not verify.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the signature verifies but the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrNoSecret is returned when constructing a TokenProvider without a signing secret.
	ErrNoSecret = errors.New("signing secret required")
)

// SessionClaims holds JWT claims for the session token. The otp claim records
// whether the second-factor step was passed at issuance.
type SessionClaims struct {
	jwt.RegisteredClaims
	OTPSatisfied bool `json:"otp,omitempty"`
}

// SessionToken is the decoded claim set of a verified session token. Callers
// must still enforce the ExpiresAt business check and any second-factor
// requirement on every use; tokens are stateless and carry no revocation state.
type SessionToken struct {
	SubjectID    string
	JTI          string
	OTPSatisfied bool
	ExpiresAt    time.Time
}

// TokenProvider issues and verifies HS256 session tokens signed with a shared secret.
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with secret (HS256).
// issuer is set on claims and validated on parse; ttl is the default token lifetime.
func NewTokenProvider(secret []byte, issuer string, ttl time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &TokenProvider{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Issue issues a session token for subjectID with the configured TTL.
// Returns the signed token, its jti (for revocation), and the expiry time.
func (p *TokenProvider) Issue(subjectID string, otpSatisfied bool) (token, jti string, expiresAt time.Time, err error) {
	return p.IssueWithTTL(subjectID, p.ttl, otpSatisfied)
}

// IssueWithTTL issues a session token with an explicit TTL. Expiry is always
// set to now + ttl; a non-positive ttl produces an already-expired token,
// which verification rejects.
func (p *TokenProvider) IssueWithTTL(subjectID string, ttl time.Duration, otpSatisfied bool) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		OTPSatisfied: otpSatisfied,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, jti, expiresAt, err
}

// Parse verifies the signature and decodes the claims. Returns ErrTokenExpired
// when the signature is valid but the embedded expiry has passed, and
// ErrTokenInvalid for any other verification failure (bad signature, wrong
// structure, wrong issuer, wrong signing method).
func (p *TokenProvider) Parse(tokenString string) (*SessionToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if p.issuer != "" && claims.Issuer != p.issuer {
		return nil, ErrTokenInvalid
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &SessionToken{
		SubjectID:    claims.Subject,
		JTI:          claims.ID,
		OTPSatisfied: claims.OTPSatisfied,
		ExpiresAt:    expiresAt,
	}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
