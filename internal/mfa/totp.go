// Package mfa implements the TOTP engine and the two-factor enrollment
// lifecycle (setup → pending → enabled → disabled) for user accounts.
package mfa

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"image/png"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Fixed TOTP parameters. All enrolled secrets use 6 digits, a 30-second step,
// SHA-256, and a ±1 step skew tolerance on verification.
const (
	secretSize = 20
	codeDigits = otp.DigitsSix
	codePeriod = 30
	codeSkew   = 1
)

var codeAlgorithm = otp.AlgorithmSHA256

// NewSecret returns a fresh cryptographically random TOTP secret.
func NewSecret() ([]byte, error) {
	b := make([]byte, secretSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Handle binds a TOTP secret to the account and issuer labels shown in
// authenticator apps. Deterministic given identical secret and wall-clock step.
type Handle struct {
	key *otp.Key
}

// Build derives a Handle from a raw secret. accountLabel is the user-facing
// account name (e.g. email); issuerLabel is the application name.
func Build(secret []byte, accountLabel, issuerLabel string) (*Handle, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuerLabel,
		AccountName: accountLabel,
		Secret:      secret,
		Digits:      codeDigits,
		Period:      codePeriod,
		Algorithm:   codeAlgorithm,
	})
	if err != nil {
		return nil, err
	}
	return &Handle{key: key}, nil
}

// BuildFromBase32 derives a Handle from an already-encoded secret, as stored
// on the user record.
func BuildFromBase32(secretBase32, accountLabel, issuerLabel string) (*Handle, error) {
	key, err := otp.NewKeyFromURL(otpauthURL(secretBase32, accountLabel, issuerLabel))
	if err != nil {
		return nil, err
	}
	return &Handle{key: key}, nil
}

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    codePeriod,
		Skew:      codeSkew,
		Digits:    codeDigits,
		Algorithm: codeAlgorithm,
	}
}

// CurrentCode returns the code for the current time step.
func (h *Handle) CurrentCode() (string, error) {
	return h.CodeAt(time.Now().UTC())
}

// CodeAt returns the code for the step containing t.
func (h *Handle) CodeAt(t time.Time) (string, error) {
	return totp.GenerateCodeCustom(h.key.Secret(), t, validateOpts())
}

// VerifyCode checks candidate against the current step and the adjacent ±1
// steps. It does no replay tracking; callers that need single-use semantics
// track the consumed step (see Manager).
func (h *Handle) VerifyCode(candidate string) bool {
	return h.VerifyCodeAt(candidate, time.Now().UTC())
}

// VerifyCodeAt checks candidate against the step containing t and its ±1 neighbors.
func (h *Handle) VerifyCodeAt(candidate string, t time.Time) bool {
	ok, err := totp.ValidateCustom(candidate, h.key.Secret(), t, validateOpts())
	return err == nil && ok
}

// MatchStep returns the time step whose code equals candidate, searching the
// step containing t and its ±1 neighbors. Reports false when no step matches.
// Comparison is constant-time per step.
func (h *Handle) MatchStep(candidate string, t time.Time) (int64, bool) {
	exact := validateOpts()
	exact.Skew = 0
	for _, dt := range []time.Duration{0, -codePeriod * time.Second, codePeriod * time.Second} {
		tt := t.Add(dt)
		code, err := totp.GenerateCodeCustom(h.key.Secret(), tt, exact)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			return CodeStep(tt), true
		}
	}
	return 0, false
}

// SecretBase32 returns the secret in the base32 form stored and shown for
// manual authenticator entry.
func (h *Handle) SecretBase32() string {
	return h.key.Secret()
}

// QRCodePNG renders the enrollment QR code as a base64-encoded PNG.
// Presentation helper only.
func (h *Handle) QRCodePNG() (string, error) {
	img, err := h.key.Image(200, 200)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CodeStep returns the TOTP time step containing t. Used to persist the last
// consumed step so a captured code cannot be replayed within its window.
func CodeStep(t time.Time) int64 {
	return t.Unix() / codePeriod
}

// otpauthURL builds the otpauth:// URL encoding the secret and the fixed
// parameters, the same form authenticator apps scan from the QR code.
func otpauthURL(secretBase32, accountLabel, issuerLabel string) string {
	v := url.Values{}
	v.Set("secret", secretBase32)
	v.Set("issuer", issuerLabel)
	v.Set("algorithm", "SHA256")
	v.Set("digits", "6")
	v.Set("period", "30")
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuerLabel + ":" + accountLabel,
		RawQuery: v.Encode(),
	}
	return u.String()
}
