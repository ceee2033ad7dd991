// Package session tracks the single authenticated user of the running process.
package session

import (
	"sync"

	"task-tracker/internal/model"
)

// Session is either anonymous or authenticated as one user. It is safe for
// concurrent use: login and logout take the write lock, queries the read lock.
// One Session is created at startup and passed to whoever needs it.
type Session struct {
	mu   sync.RWMutex
	user *model.User
}

func New() *Session {
	return &Session{}
}

// Login authenticates the session as user, replacing any previous user.
func (s *Session) Login(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Logout returns the session to anonymous. Calling it while anonymous is a no-op.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser returns a copy of the authenticated user.
func (s *Session) CurrentUser() (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, model.ErrNoActiveSession
	}
	return *s.user, nil
}

func (s *Session) UserID() (string, error) {
	u, err := s.CurrentUser()
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *Session) Username() (string, error) {
	u, err := s.CurrentUser()
	if err != nil {
		return "", err
	}
	if u.Username == "" {
		return "Unknown", nil
	}
	return u.Username, nil
}
