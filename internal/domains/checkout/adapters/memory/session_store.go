package memory

import (
	"context"
	"sync"
	"time"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps checkout session snapshots in memory, keyed by user.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]ports.CheckoutSession
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]ports.CheckoutSession{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Load returns the stored session for the user, or nil when absent.
func (s *SessionStore) Load(_ context.Context, userID string) (*ports.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	copy := session
	return &copy, nil
}

func (s *SessionStore) Save(_ context.Context, session ports.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
	return nil
}

func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// PurgeExpired removes sessions whose payment window elapsed more than the
// grace period ago. Sessions without an expiry are kept.
func (s *SessionStore) PurgeExpired(_ context.Context, grace time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-grace)
	var purged int64
	for userID, session := range s.sessions {
		if session.PaymentExpiresAt != nil && session.PaymentExpiresAt.Before(cutoff) {
			delete(s.sessions, userID)
			purged++
		}
	}
	return purged, nil
}
