package favorites

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Accounts is an in-memory Authenticator storing bcrypt hashes.
type Accounts struct {
	cost int

	mu     sync.RWMutex
	hashes map[string][]byte
}

// NewAccounts returns an empty account store.  cost 0 selects
// bcrypt.DefaultCost.
func NewAccounts(cost int) *Accounts {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{cost: cost, hashes: make(map[string][]byte)}
}

// Register stores a hash of secret for identity.  Registering an
// existing identity is a no-op and keeps the original secret.
func (a *Accounts) Register(identity, secret string) error {
	a.mu.RLock()
	_, exists := a.hashes[identity]
	a.mu.RUnlock()
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), a.cost)
	if err != nil {
		return fmt.Errorf("hash secret for %s: %w", identity, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.hashes[identity]; !exists {
		a.hashes[identity] = hash
	}
	return nil
}

// Login reports whether secret matches the stored hash for identity.
func (a *Accounts) Login(identity, secret string) bool {
	a.mu.RLock()
	hash, ok := a.hashes[identity]
	a.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}

// Exists reports whether identity has registered.
func (a *Accounts) Exists(identity string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.hashes[identity]
	return ok
}
