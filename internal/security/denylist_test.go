package security

import (
	"testing"
	"time"
)

func TestDenyList_RevokeAndCheck(t *testing.T) {
	d := NewDenyList(time.Hour)
	if d.Revoked("jti-1") {
		t.Error("unknown jti should not be revoked")
	}
	d.Revoke("jti-1")
	if !d.Revoked("jti-1") {
		t.Error("revoked jti should report revoked")
	}
	d.Revoke("")
	if d.Revoked("") {
		t.Error("empty jti is never revoked")
	}
}

func TestDenyList_EntriesAgeOut(t *testing.T) {
	d := NewDenyList(time.Minute)
	current := time.Now().UTC()
	d.now = func() time.Time { return current }
	d.Revoke("jti-1")
	current = current.Add(2 * time.Minute)
	if d.Revoked("jti-1") {
		t.Error("aged-out entry should not be revoked")
	}
}

func TestDenyList_Purge(t *testing.T) {
	d := NewDenyList(time.Minute)
	current := time.Now().UTC()
	d.now = func() time.Time { return current }
	d.Revoke("a")
	d.Revoke("b")
	current = current.Add(2 * time.Minute)
	d.Revoke("c")
	if removed := d.Purge(); removed != 2 {
		t.Errorf("Purge want 2 removed, got %d", removed)
	}
	if !d.Revoked("c") {
		t.Error("fresh entry should survive Purge")
	}
}
