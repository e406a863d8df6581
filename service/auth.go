package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/model"
	"github.com/cipolleschi/instagram/storage"
	"github.com/cipolleschi/instagram/utils"
)

const sessionTTL = 24 * time.Hour

/*

AuthService owns the single mutable session of the process.

Login accepts any password: the backend is a mock, there is no credential
verification anywhere. A fixture user is matched by exact email; any other
email gets a synthesized transient account so every login succeeds unless the
session cannot be persisted.

The service is an instance, not a process-wide static: tests build as many
independent instances as they need, each with its own store and channels.

*/

type AuthService struct {
	store    storage.Store
	fixtures *fixture.Data
	notifier *Notifier

	// Sessions publishes a SessionEvent on every state transition.
	Sessions *SessionChannels

	// mu serializes every read-modify-write on the session slot and guards
	// the in-memory current session.
	mu      sync.Mutex
	current *model.Session

	// now is replaceable in tests to exercise expiry.
	now func() time.Time
}

func NewAuthService(store storage.Store, fixtures *fixture.Data, notifier *Notifier) *AuthService {
	return &AuthService{
		store:    store,
		fixtures: fixtures,
		notifier: notifier,
		Sessions: NewSessionChannels(),
		now:      time.Now,
	}
}

// Login issues a fresh session for email. The password is accepted as-is.
func (s *AuthService) Login(ctx context.Context, email string, password string) (*model.Session, error) {
	utils.SimulateLatency()

	user, ok := s.fixtures.UserByEmail(email)
	if !ok {
		// Synthesize a transient user for any unknown email.
		user = model.User{
			Id:        "temp_" + uuid.New().String(),
			Username:  emailLocalPart(email),
			Email:     email,
			Bio:       "New user",
			AvatarUrl: "avatar1.jpg",
			CreatedAt: s.now(),
		}
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "login failed")
	}

	s.Sessions.Push(&model.SessionEvent{Type: model.SessionEventLogin, Session: session})
	return session, nil
}

// Signup creates a new account. It conflicts with ErrUserExists when the
// email already belongs to a seeded user, without persisting anything.
func (s *AuthService) Signup(ctx context.Context, email string, password string) (*model.Session, error) {
	utils.SimulateLatency()

	if _, ok := s.fixtures.UserByEmail(email); ok {
		return nil, ErrUserExists
	}

	user := model.User{
		Id:        "user_" + uuid.New().String(),
		Username:  emailLocalPart(email),
		Email:     email,
		Bio:       "New Instagram user 📸",
		AvatarUrl: "avatar5.jpg",
		CreatedAt: s.now(),
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "signup failed")
	}

	s.notifier.SendWelcome(user.Username)
	s.Sessions.Push(&model.SessionEvent{Type: model.SessionEventSignup, Session: session})
	return session, nil
}

// Logout drops the in-memory session and the persisted slot. Calling it
// while already logged out succeeds silently.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	err := s.store.Remove(ctx, storage.KeySession)
	s.mu.Unlock()

	if err != nil {
		return errors.Wrap(err, "logout failed")
	}
	s.Sessions.Push(&model.SessionEvent{Type: model.SessionEventLogout})
	return nil
}

// CurrentSession returns the active session, loading and caching the
// persisted one when process memory has none. Returns (nil, nil) when nobody
// is logged in.
func (s *AuthService) CurrentSession(ctx context.Context) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSessionLocked(ctx)
}

// CurrentUser returns the user embedded in the active session, or (nil, nil).
func (s *AuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// IsAuthenticated is true iff a session exists and its expiry is strictly in
// the future. An expired session stays in memory: it is the caller's job to
// check before trusting it.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	session, err := s.CurrentSession(ctx)
	if err != nil || session == nil {
		return false
	}
	return session.ExpiresAt.After(s.now())
}

// RefreshSession rotates the access token and extends the expiry by another
// 24h from now. Returns (nil, nil) when no session exists.
func (s *AuthService) RefreshSession(ctx context.Context) (*model.Session, error) {
	s.mu.Lock()
	session, err := s.currentSessionLocked(ctx)
	if err != nil || session == nil {
		s.mu.Unlock()
		return nil, err
	}

	session.AccessToken = "mock_token_" + uuid.New().String()
	session.ExpiresAt = s.now().Add(sessionTTL)

	if err := s.store.Set(ctx, storage.KeySession, session); err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(err, "refresh failed")
	}
	s.current = session
	s.mu.Unlock()

	s.Sessions.Push(&model.SessionEvent{Type: model.SessionEventRefresh, Session: session})
	return copySession(session), nil
}

// QuickLogin signs in as a seeded account directly, a development shortcut
// carried over from the original client.
func (s *AuthService) QuickLogin(ctx context.Context, userId string) (*model.Session, error) {
	user, ok := s.fixtures.UserById(userId)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Login(ctx, user.Email, "password")
}

// PredefinedUsers lists the seeded accounts available for quick login.
func (s *AuthService) PredefinedUsers() []model.User {
	return s.fixtures.Users()
}

func (s *AuthService) issueSession(ctx context.Context, user model.User) (*model.Session, error) {
	session := &model.Session{
		User:         user,
		AccessToken:  "mock_token_" + uuid.New().String(),
		RefreshToken: "mock_refresh_" + uuid.New().String(),
		ExpiresAt:    s.now().Add(sessionTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, storage.KeySession, session); err != nil {
		return nil, err
	}
	s.current = session
	return copySession(session), nil
}

func (s *AuthService) currentSessionLocked(ctx context.Context) (*model.Session, error) {
	if s.current != nil {
		return copySession(s.current), nil
	}

	session := model.Session{}
	err := s.store.Get(ctx, storage.KeySession, &session)
	if err == storage.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to load persisted session")
	}
	s.current = &session
	return copySession(&session), nil
}

func copySession(session *model.Session) *model.Session {
	out := model.Session{}
	copier.CopyWithOption(&out, session, copier.Option{DeepCopy: true})
	return &out
}

func emailLocalPart(email string) string {
	return strings.Split(email, "@")[0]
}
