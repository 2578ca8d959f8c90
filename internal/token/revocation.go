package token

import "sync"

// RevocationRegistry tracks refresh tokens that must no longer be honored.
// Process-scoped and in-memory: a restart clears all entries. Entries are
// never removed while the process lives.
type RevocationRegistry struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewRevocationRegistry creates an empty registry.
func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{revoked: make(map[string]struct{})}
}

// Revoke marks a refresh token as revoked. Idempotent.
func (r *RevocationRegistry) Revoke(refreshToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[refreshToken] = struct{}{}
}

// IsRevoked reports whether a refresh token has been revoked.
func (r *RevocationRegistry) IsRevoked(refreshToken string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[refreshToken]
	return ok
}
