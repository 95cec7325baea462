// Package sessionstore provides persistent session store backends for the
// session Manager: an in-process store for tests and ephemeral tooling, a
// file store for durable single-user storage, and a Redis store for shared
// environments.
package sessionstore

import (
	"context"
	"sync"

	"github.com/kasyus/kasyus-go/session"
	"github.com/kasyus/kasyus-go/users"
)

var _ session.Store = (*Memory)(nil)

// Memory is an in-process session store. State does not survive the process.
type Memory struct {
	lock  sync.RWMutex
	token string
	user  *users.User
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Read(_ context.Context) (string, *users.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.user == nil {
		return s.token, nil, nil
	}
	u := *s.user
	return s.token, &u, nil
}

func (s *Memory) WriteToken(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = token
	return nil
}

func (s *Memory) WriteUser(_ context.Context, user *users.User) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	u := *user
	s.user = &u
	return nil
}

func (s *Memory) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
