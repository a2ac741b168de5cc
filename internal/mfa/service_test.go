package mfa

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/user/domain"
	userrepo "platform-control-plane/backend/internal/user/repository"
)

type memUserStore struct {
	mu sync.Mutex
	m  map[string]*domain.User
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{m: make(map[string]*domain.User)}
	for _, u := range users {
		s.m[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	if u.TwoFactor != nil {
		tf := *u.TwoFactor
		cp.TwoFactor = &tf
	}
	return &cp, nil
}

func (s *memUserStore) Save(ctx context.Context, u *domain.User, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[u.ID]
	if !ok || cur.Version != expectedVersion {
		return userrepo.ErrVersionConflict
	}
	cp := *u
	cp.Version = expectedVersion + 1
	if u.TwoFactor != nil {
		tf := *u.TwoFactor
		cp.TwoFactor = &tf
	}
	s.m[u.ID] = &cp
	u.Version = cp.Version
	return nil
}

func testUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        "user-1",
		Email:     "user@example.com",
		Status:    domain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestManager_StartEnrollment(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)

	enr, err := m.StartEnrollment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartEnrollment: %v", err)
	}
	if enr.SecretBase32 == "" || enr.QRCodePNG == "" || enr.RecoveryCode == "" {
		t.Fatal("fresh enrollment should return secret, QR, and recovery code")
	}
	saved, _ := store.GetByID(context.Background(), "user-1")
	if !saved.TwoFactorPending() {
		t.Fatal("user should be in pending state after StartEnrollment")
	}
}

func TestManager_StartEnrollment_IdempotentResume(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)

	first, err := m.StartEnrollment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartEnrollment: %v", err)
	}
	second, err := m.StartEnrollment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartEnrollment resume: %v", err)
	}
	if first.SecretBase32 != second.SecretBase32 {
		t.Error("resumed enrollment should return the identical secret")
	}
	if second.RecoveryCode != "" {
		t.Error("resumed enrollment should not re-issue the recovery code")
	}
}

func TestManager_StartEnrollment_AlreadyEnabled(t *testing.T) {
	u := testUser()
	now := time.Now().UTC()
	u.TwoFactor = &domain.TwoFactorState{SecretBase32: "SECRET", SetupCompletedAt: &now}
	store := newMemUserStore(u)
	m := NewManager(store, "test-app", nil)

	if _, err := m.StartEnrollment(context.Background(), "user-1"); !errors.Is(err, autherr.ErrConflict) {
		t.Errorf("want conflict, got %v", err)
	}
}

func TestManager_ConfirmEnrollment(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)

	enr, err := m.StartEnrollment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartEnrollment: %v", err)
	}
	handle, err := BuildFromBase32(enr.SecretBase32, "user@example.com", "test-app")
	if err != nil {
		t.Fatalf("BuildFromBase32: %v", err)
	}
	code, _ := handle.CurrentCode()
	if err := m.ConfirmEnrollment(context.Background(), "user-1", code); err != nil {
		t.Fatalf("ConfirmEnrollment: %v", err)
	}
	saved, _ := store.GetByID(context.Background(), "user-1")
	if !saved.TwoFactorEnabled() {
		t.Fatal("user should be enabled after confirmation")
	}
}

func TestManager_ConfirmEnrollment_WrongCode(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)

	if _, err := m.StartEnrollment(context.Background(), "user-1"); err != nil {
		t.Fatalf("StartEnrollment: %v", err)
	}
	before, _ := store.GetByID(context.Background(), "user-1")
	if err := m.ConfirmEnrollment(context.Background(), "user-1", "000000"); !errors.Is(err, autherr.ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
	after, _ := store.GetByID(context.Background(), "user-1")
	if after.TwoFactorEnabled() || after.Version != before.Version {
		t.Error("wrong code must not mutate the record")
	}
}

func TestManager_ConfirmEnrollment_AbsentState(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	if err := m.ConfirmEnrollment(context.Background(), "user-1", "123456"); !errors.Is(err, autherr.ErrConflict) {
		t.Errorf("confirm in absent state: want conflict, got %v", err)
	}
}

func enabledUser(t *testing.T, store *memUserStore, m *Manager) *Handle {
	t.Helper()
	enr, err := m.StartEnrollment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartEnrollment: %v", err)
	}
	handle, err := BuildFromBase32(enr.SecretBase32, "user@example.com", "test-app")
	if err != nil {
		t.Fatalf("BuildFromBase32: %v", err)
	}
	code, _ := handle.CurrentCode()
	if err := m.ConfirmEnrollment(context.Background(), "user-1", code); err != nil {
		t.Fatalf("ConfirmEnrollment: %v", err)
	}
	return handle
}

func TestManager_Disable(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	handle := enabledUser(t, store, m)

	code, _ := handle.CurrentCode()
	if err := m.Disable(context.Background(), "user-1", code); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	saved, _ := store.GetByID(context.Background(), "user-1")
	if saved.TwoFactor != nil {
		t.Fatal("disable should clear the entire two-factor state")
	}
}

func TestManager_Disable_WrongCodeLeavesEnabled(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	enabledUser(t, store, m)

	if err := m.Disable(context.Background(), "user-1", "000000"); !errors.Is(err, autherr.ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
	saved, _ := store.GetByID(context.Background(), "user-1")
	if !saved.TwoFactorEnabled() {
		t.Fatal("state must remain enabled after a wrong disable code")
	}
}

func TestManager_Disable_AbsentState(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	if err := m.Disable(context.Background(), "user-1", "123456"); !errors.Is(err, autherr.ErrConflict) {
		t.Errorf("disable in absent state: want conflict, got %v", err)
	}
}

func TestManager_VerifyLoginCode_RejectsReplay(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	handle := enabledUser(t, store, m)

	// Pin the clock one step ahead of the confirmation so the login code is fresh.
	at := time.Now().UTC().Add(60 * time.Second)
	m.now = func() time.Time { return at }
	code, _ := handle.CodeAt(at)

	ok, err := m.VerifyLoginCode(context.Background(), "user-1", code)
	if err != nil || !ok {
		t.Fatalf("first use: ok=%v err=%v", ok, err)
	}
	ok, err = m.VerifyLoginCode(context.Background(), "user-1", code)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if ok {
		t.Error("same code in the same step must be rejected as a replay")
	}
}

func TestManager_VerifyLoginCode_NotEnabled(t *testing.T) {
	store := newMemUserStore(testUser())
	m := NewManager(store, "test-app", nil)
	if _, err := m.VerifyLoginCode(context.Background(), "user-1", "123456"); !errors.Is(err, autherr.ErrConflict) {
		t.Errorf("verify without enabled 2fa: want conflict, got %v", err)
	}
}

func TestManager_UserNotFound(t *testing.T) {
	store := newMemUserStore()
	m := NewManager(store, "test-app", nil)
	if _, err := m.StartEnrollment(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}
