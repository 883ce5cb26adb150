// Package session holds per-visitor chat state: the conversation log, the
// theme and the in-flight guard. Nothing here knows how state is rendered.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Session is one isolated interactive context.
type Session struct {
	ID        string
	CreatedAt time.Time

	Log Log

	mu       sync.Mutex
	theme    Theme
	lastSeen time.Time

	inFlight atomic.Bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		theme:     ThemeDark,
		lastSeen:  now,
	}
}

func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Session) SetTheme(t Theme) {
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// TryBegin marks a query as in flight. It returns false when one already is.
func (s *Session) TryBegin() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

// Done clears the in-flight mark set by TryBegin.
func (s *Session) Done() {
	s.inFlight.Store(false)
}

func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	ID        string    `json:"id"`
	Theme     Theme     `json:"theme"`
	History   []Entry   `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"pending"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Theme:     s.Theme(),
		History:   s.Log.All(),
		CreatedAt: s.CreatedAt,
		Pending:   s.InFlight(),
	}
}
