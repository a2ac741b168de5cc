package mfa

import (
	"testing"
	"time"
)

func buildTestHandle(t *testing.T) *Handle {
	t.Helper()
	secret, err := NewSecret()
	if err != nil {
		t.Fatalf("NewSecret: %v", err)
	}
	h, err := Build(secret, "user@example.com", "test-app")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestHandle_VerifyCurrentCode(t *testing.T) {
	h := buildTestHandle(t)
	now := time.Now().UTC()
	code, err := h.CodeAt(now)
	if err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code should be 6 digits, got %q", code)
	}
	if !h.VerifyCodeAt(code, now) {
		t.Error("current code should verify")
	}
}

func TestHandle_SkewTolerance(t *testing.T) {
	h := buildTestHandle(t)
	now := time.Now().UTC()
	prev, _ := h.CodeAt(now.Add(-30 * time.Second))
	next, _ := h.CodeAt(now.Add(30 * time.Second))
	if !h.VerifyCodeAt(prev, now) {
		t.Error("code from the previous step should verify (±1 skew)")
	}
	if !h.VerifyCodeAt(next, now) {
		t.Error("code from the next step should verify (±1 skew)")
	}
	far, _ := h.CodeAt(now.Add(-90 * time.Second))
	if h.VerifyCodeAt(far, now) {
		t.Error("code from 3 steps away should not verify")
	}
}

func TestHandle_RejectsGarbage(t *testing.T) {
	h := buildTestHandle(t)
	now := time.Now().UTC()
	for _, candidate := range []string{"", "000000", "abcdef", "12345"} {
		code, _ := h.CodeAt(now)
		if candidate == code {
			continue // vanishingly unlikely collision with the real code
		}
		if h.VerifyCodeAt(candidate, now) {
			t.Errorf("candidate %q should not verify", candidate)
		}
	}
}

func TestHandle_Deterministic(t *testing.T) {
	secret, _ := NewSecret()
	h1, _ := Build(secret, "a@example.com", "app")
	h2, _ := BuildFromBase32(h1.SecretBase32(), "a@example.com", "app")
	at := time.Unix(1700000000, 0).UTC()
	c1, _ := h1.CodeAt(at)
	c2, _ := h2.CodeAt(at)
	if c1 != c2 {
		t.Errorf("same secret and step should produce the same code: %q vs %q", c1, c2)
	}
}

func TestHandle_MatchStep(t *testing.T) {
	h := buildTestHandle(t)
	now := time.Unix(1700000000, 0).UTC()
	code, _ := h.CodeAt(now)
	step, ok := h.MatchStep(code, now)
	if !ok {
		t.Fatal("current code should match a step")
	}
	if step != CodeStep(now) {
		t.Errorf("matched step want %d, got %d", CodeStep(now), step)
	}
	prev, _ := h.CodeAt(now.Add(-30 * time.Second))
	if prevStep, ok := h.MatchStep(prev, now); !ok || prevStep != CodeStep(now)-1 {
		t.Errorf("previous-step code should match step %d, got %d ok=%v", CodeStep(now)-1, prevStep, ok)
	}
	if _, ok := h.MatchStep("999999", now); ok {
		t.Error("non-code should not match any step")
	}
}

func TestHandle_Presentation(t *testing.T) {
	h := buildTestHandle(t)
	if h.SecretBase32() == "" {
		t.Error("SecretBase32 should not be empty")
	}
	qr, err := h.QRCodePNG()
	if err != nil {
		t.Fatalf("QRCodePNG: %v", err)
	}
	if qr == "" {
		t.Error("QRCodePNG should return a base64 payload")
	}
}
