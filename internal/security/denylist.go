package security

import (
	"sync"
	"time"
)

// DenyList records revoked session token ids (jti) until their natural expiry.
// Tokens are stateless, so this is the only way to end a session early; entries
// need to live only as long as the longest token TTL. The guard consults the
// list only when one is configured, keeping the stateless default cheap.
type DenyList struct {
	mu  sync.RWMutex
	m   map[string]time.Time
	ttl time.Duration
	now func() time.Time
}

// NewDenyList returns a DenyList whose entries expire after ttl.
func NewDenyList(ttl time.Duration) *DenyList {
	return &DenyList{
		m:   make(map[string]time.Time),
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Revoke adds jti to the list. A no-op on the empty string.
func (d *DenyList) Revoke(jti string) {
	if jti == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[jti] = d.now().Add(d.ttl)
}

// Revoked reports whether jti is on the list and not yet aged out.
// Expired entries are removed on read.
func (d *DenyList) Revoked(jti string) bool {
	d.mu.RLock()
	until, ok := d.m[jti]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	if !until.After(d.now()) {
		d.mu.Lock()
		delete(d.m, jti)
		d.mu.Unlock()
		return false
	}
	return true
}

// Purge drops all aged-out entries and returns how many were removed.
func (d *DenyList) Purge() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	removed := 0
	for jti, until := range d.m {
		if !until.After(now) {
			delete(d.m, jti)
			removed++
		}
	}
	return removed
}
