package credentials

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Store owns the persisted credentials and the session built from them.
type Store struct {
	path    string
	factory SessionFactory

	mu      sync.RWMutex
	creds   Credentials
	session Session
}

// NewStore creates a store backed by the credentials file at path.
func NewStore(path string, factory SessionFactory) *Store {
	return &Store{path: path, factory: factory}
}

// Path returns the credentials file location.
func (s *Store) Path() string { return s.path }

// Load reads the credentials file and prepares a session from it. The
// session is not verified against the API.
func (s *Store) Load(ctx context.Context) error {
	creds, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.session = nil
	if creds.Empty() {
		return nil
	}
	sess, err := s.factory(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.session = sess
	return nil
}

// CurrentUser returns the active session, or ErrUnauthenticated.
func (s *Store) CurrentUser() (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrUnauthenticated
	}
	return s.session, nil
}

// Credentials returns a copy of the stored credentials.
func (s *Store) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Login verifies creds with the API, persists them together with the
// account identity and makes the session current.
func (s *Store) Login(ctx context.Context, creds Credentials) (Session, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("%w: no API key or access token given", ErrUnauthenticated)
	}
	sess, err := s.factory(ctx, creds)
	if err != nil {
		return nil, err
	}
	user, err := sess.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}
	creds.UserID = user.ID
	creds.Username = user.Username

	if err := SaveFile(s.path, creds); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.creds = creds
	s.session = sess
	s.mu.Unlock()
	return sess, nil
}

// Logout forgets the session and removes the credentials file.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.session = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
