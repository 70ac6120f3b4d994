// Package session tracks whether the storefront user is signed in.
package session

import (
	"context"
	"sync"
)

// Listener is called after the authenticated flag flips.
type Listener func(ctx context.Context, authenticated bool)

// State is the explicit auth state handed to components that need it.
type State struct {
	mu            sync.RWMutex
	authenticated bool
	userID        string
	listeners     []Listener
}

func NewState() *State {
	return &State{}
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// OnChange registers a listener. Listeners run synchronously in
// registration order, outside the state lock.
func (s *State) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore sets the state without notifying listeners, for start-up.
func (s *State) Restore(userID string, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.authenticated = authenticated
}

func (s *State) Login(ctx context.Context, userID string) {
	s.set(ctx, userID, true)
}

func (s *State) Logout(ctx context.Context) {
	s.set(ctx, "", false)
}

func (s *State) set(ctx context.Context, userID string, authenticated bool) {
	s.mu.Lock()
	changed := s.authenticated != authenticated
	s.authenticated = authenticated
	s.userID = userID
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(ctx, authenticated)
	}
}
