package model

import "time"

/*

Session is the authenticated-identity record issued on login/signup

User: snapshot of the user at issue time. Profile edits do not propagate
	back into an already-issued session.
AccessToken: opaque bearer token, rotated on refresh
RefreshToken: opaque token, stable for the session's lifetime
ExpiresAt: absolute expiry, 24h from issue/refresh. Never renewed
	automatically, callers check it through AuthService.IsAuthenticated.

*/

type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SessionEventType string

const (
	SessionEventLogin   SessionEventType = "login"
	SessionEventSignup  SessionEventType = "signup"
	SessionEventLogout  SessionEventType = "logout"
	SessionEventRefresh SessionEventType = "refresh"
)

// SessionEvent is pushed to session subscribers whenever the current session
// transitions. Session is nil for logout events.
type SessionEvent struct {
	Type    SessionEventType `json:"type"`
	Session *Session         `json:"session"`
}
