package controllers

import (
	"optic-app/grn"
	"sync"
)

// Intake sessions are keyed by the auth session id, so a draft survives
// requests but dies with the login session.
var (
	intakeMu       sync.Mutex
	intakeSessions = make(map[string]*grn.Session)
)

func loadOrStoreIntakeSession(sessionID string, create func() *grn.Session) *grn.Session {
	intakeMu.Lock()
	defer intakeMu.Unlock()

	if s, ok := intakeSessions[sessionID]; ok {
		return s
	}
	s := create()
	intakeSessions[sessionID] = s
	return s
}

// dropIntakeSession cancels the session and removes it from the registry.
// Called when the user abandons the draft or logs out.
func dropIntakeSession(sessionID string) {
	intakeMu.Lock()
	s, ok := intakeSessions[sessionID]
	delete(intakeSessions, sessionID)
	intakeMu.Unlock()

	if ok {
		s.Cancel()
	}
}
