// Package session tracks signed-in users. Handlers receive a Session value
// and pass it explicitly to the operations that need one.
package session

import (
	"sync"

	"github.com/Domenick1991/travelstore/internal/domain"
)

type Session struct {
	ID          string      `json:"sid"`
	UserID      string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
	Updated   EventKind = "updated"
)

type Event struct {
	Kind    EventKind
	Session Session
}

// Tracker holds the active sessions of this process. Every change is
// delivered to at most one subscriber, synchronously and outside the lock.
type Tracker struct {
	mu         sync.RWMutex
	sessions   map[string]Session
	subscriber func(Event)
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]Session)}
}

// Subscribe replaces the current subscriber. Passing nil removes it.
func (t *Tracker) Subscribe(fn func(Event)) {
	t.mu.Lock()
	t.subscriber = fn
	t.mu.Unlock()
}

func (t *Tracker) SignIn(s Session) {
	t.mu.Lock()
	t.sessions[s.ID] = s
	fn := t.subscriber
	t.mu.Unlock()

	notify(fn, Event{Kind: SignedIn, Session: s})
}

// SignOut clears the session. It reports false if id was not signed in.
func (t *Tracker) SignOut(id string) (Session, bool) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	delete(t.sessions, id)
	fn := t.subscriber
	t.mu.Unlock()

	if ok {
		notify(fn, Event{Kind: SignedOut, Session: s})
	}
	return s, ok
}

// UpdateUser refreshes the display name on every session of userID.
func (t *Tracker) UpdateUser(userID, displayName string) {
	t.mu.Lock()
	var changed []Session
	for id, s := range t.sessions {
		if s.UserID == userID {
			s.DisplayName = displayName
			t.sessions[id] = s
			changed = append(changed, s)
		}
	}
	fn := t.subscriber
	t.mu.Unlock()

	for _, s := range changed {
		notify(fn, Event{Kind: Updated, Session: s})
	}
}

func (t *Tracker) Lookup(id string) (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[id]
	return s, ok
}

func notify(fn func(Event), e Event) {
	if fn != nil {
		fn(e)
	}
}
