package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/course-session-gateway/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is a session cache that records calls and can be told to fail.
type FakeSessionRepo struct {
	sessions map[string]sessions.Session
	lock     sync.RWMutex

	Err     error // returned by every call when set
	Upserts int
	Deletes int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]sessions.Session),
	}
}

func (sr *FakeSessionRepo) Get(_ context.Context, sessionID string) (sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.Err != nil {
		return sessions.Session{}, sr.Err
	}
	s, ok := sr.sessions[sessionID]
	if !ok {
		return sessions.Session{}, sessions.ErrSessionNotFound
	}
	return s, nil
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, session sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Upserts++
	if sr.Err != nil {
		return sr.Err
	}
	sr.sessions[session.ID] = session
	return nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Deletes++
	if sr.Err != nil {
		return sr.Err
	}
	delete(sr.sessions, sessionID)
	return nil
}

// Len returns the number of cached sessions
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.sessions)
}
