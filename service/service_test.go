package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/storage"
)

// testServices builds an isolated service graph backed by a fresh in-memory
// store. Every test gets its own instances so state never leaks.
type testServices struct {
	Store    *storage.MemoryStore
	Fixtures *fixture.Data
	Notifier *Notifier
	Auth     *AuthService
	Posts    *PostService
	Profiles *ProfileService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	fixtures, err := fixture.Load()
	assert.Nil(t, err)

	store := storage.NewMemoryStore()
	notifier := NewNotifier()
	auth := NewAuthService(store, fixtures, notifier)
	posts := NewPostService(store, fixtures, auth, notifier)
	profiles := NewProfileService(store, fixtures, posts)

	return &testServices{
		Store:    store,
		Fixtures: fixtures,
		Notifier: notifier,
		Auth:     auth,
		Posts:    posts,
		Profiles: profiles,
	}
}
