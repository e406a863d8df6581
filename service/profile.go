package service

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/model"
	"github.com/cipolleschi/instagram/storage"
	"github.com/cipolleschi/instagram/utils"
)

/*

ProfileService is CRUD over the profile map and the follow graph.

Profiles are stored as one map keyed by user id, the follow graph as an
adjacency map followerId -> followingIds. Both live in single storage slots
guarded by per-collection mutexes.

A profile read that falls back to fixture data synthesizes follower/following
counts once and persists the result immediately, so repeated reads observe
stable numbers.

*/

type ProfileService struct {
	store    storage.Store
	fixtures *fixture.Data
	posts    *PostService

	profilesMu sync.Mutex
	followsMu  sync.Mutex
}

func NewProfileService(store storage.Store, fixtures *fixture.Data, posts *PostService) *ProfileService {
	return &ProfileService{
		store:    store,
		fixtures: fixtures,
		posts:    posts,
	}
}

// GetProfile returns the persisted profile for userId, synthesizing and
// persisting one from fixture data on first read. Fails with ErrNotFound for
// unknown users.
func (s *ProfileService) GetProfile(ctx context.Context, userId string) (*model.Profile, error) {
	utils.SimulateLatency()

	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	return s.getOrSynthesizeLocked(ctx, userId)
}

// UpdateProfile merges the given fields into the profile, pinning the id to
// userId, and persists the result.
func (s *ProfileService) UpdateProfile(ctx context.Context, userId string, update model.ProfileUpdate) (*model.Profile, error) {
	utils.SimulateLatency()

	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	profile, err := s.getOrSynthesizeLocked(ctx, userId)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		profile.Username = *update.Username
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	if update.AvatarUrl != nil {
		profile.AvatarUrl = *update.AvatarUrl
	}
	profile.Id = userId

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	profiles[userId] = *profile
	if err := s.store.Set(ctx, storage.KeyProfiles, profiles); err != nil {
		return nil, errors.Wrap(err, "fail to persist profiles")
	}
	return profile, nil
}

// GetProfileStats combines the stored follower/following counts with the
// live post count.
func (s *ProfileService) GetProfileStats(ctx context.Context, userId string) (*model.ProfileStats, error) {
	profile, err := s.GetProfile(ctx, userId)
	if err != nil {
		return nil, err
	}

	postsCount, err := s.posts.GetUserPostCount(ctx, userId)
	if err != nil {
		return nil, err
	}

	return &model.ProfileStats{
		PostsCount:     postsCount,
		FollowersCount: profile.FollowersCount,
		FollowingCount: profile.FollowingCount,
	}, nil
}

// FollowUser records currentUserId following targetUserId. Following twice
// is a no-op. Self-follows are not validated.
func (s *ProfileService) FollowUser(ctx context.Context, currentUserId string, targetUserId string) error {
	utils.SimulateLatency()

	s.followsMu.Lock()
	defer s.followsMu.Unlock()

	follows, err := s.loadFollows(ctx)
	if err != nil {
		return err
	}

	if utils.ContainsString(follows[currentUserId], targetUserId) {
		return nil
	}
	follows[currentUserId] = append(follows[currentUserId], targetUserId)
	if err := s.store.Set(ctx, storage.KeyFollows, follows); err != nil {
		return errors.Wrap(err, "fail to persist follows")
	}
	return nil
}

// UnfollowUser removes the edge if present.
func (s *ProfileService) UnfollowUser(ctx context.Context, currentUserId string, targetUserId string) error {
	utils.SimulateLatency()

	s.followsMu.Lock()
	defer s.followsMu.Unlock()

	follows, err := s.loadFollows(ctx)
	if err != nil {
		return err
	}

	if !utils.ContainsString(follows[currentUserId], targetUserId) {
		return nil
	}
	follows[currentUserId] = utils.RemoveString(follows[currentUserId], targetUserId)
	if err := s.store.Set(ctx, storage.KeyFollows, follows); err != nil {
		return errors.Wrap(err, "fail to persist follows")
	}
	return nil
}

// IsFollowing reports whether the edge currentUserId -> targetUserId exists.
func (s *ProfileService) IsFollowing(ctx context.Context, currentUserId string, targetUserId string) (bool, error) {
	s.followsMu.Lock()
	follows, err := s.loadFollows(ctx)
	s.followsMu.Unlock()
	if err != nil {
		return false, err
	}
	return utils.ContainsString(follows[currentUserId], targetUserId), nil
}

// GetFollowing resolves the profiles userId follows, in follow order.
func (s *ProfileService) GetFollowing(ctx context.Context, userId string) ([]model.Profile, error) {
	s.followsMu.Lock()
	follows, err := s.loadFollows(ctx)
	s.followsMu.Unlock()
	if err != nil {
		return nil, err
	}

	return s.resolveProfiles(ctx, follows[userId])
}

// GetFollowers resolves the profiles following userId by reverse-scanning
// the adjacency map. Results are ordered by follower id for determinism.
func (s *ProfileService) GetFollowers(ctx context.Context, userId string) ([]model.Profile, error) {
	s.followsMu.Lock()
	follows, err := s.loadFollows(ctx)
	s.followsMu.Unlock()
	if err != nil {
		return nil, err
	}

	followerIds := []string{}
	for followerId, followingIds := range follows {
		if utils.ContainsString(followingIds, userId) {
			followerIds = append(followerIds, followerId)
		}
	}
	sort.Strings(followerIds)

	return s.resolveProfiles(ctx, followerIds)
}

// SearchProfiles matches seeded users whose username or bio contains query,
// case-insensitively.
func (s *ProfileService) SearchProfiles(ctx context.Context, query string) ([]model.Profile, error) {
	utils.SimulateLatency()

	needle := strings.ToLower(query)
	matched := []string{}
	for _, user := range s.fixtures.Users() {
		if strings.Contains(strings.ToLower(user.Username), needle) ||
			strings.Contains(strings.ToLower(user.Bio), needle) {
			matched = append(matched, user.Id)
		}
	}
	return s.resolveProfiles(ctx, matched)
}

// GetAllProfiles resolves every seeded user's profile.
func (s *ProfileService) GetAllProfiles(ctx context.Context) ([]model.Profile, error) {
	ids := []string{}
	for _, user := range s.fixtures.Users() {
		ids = append(ids, user.Id)
	}
	return s.resolveProfiles(ctx, ids)
}

// ResetProfiles drops the profile map and the follow graph, a development
// helper carried over from the original client.
func (s *ProfileService) ResetProfiles(ctx context.Context) error {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	s.followsMu.Lock()
	defer s.followsMu.Unlock()

	if err := s.store.Remove(ctx, storage.KeyProfiles); err != nil {
		return errors.Wrap(err, "fail to reset profiles")
	}
	if err := s.store.Remove(ctx, storage.KeyFollows); err != nil {
		return errors.Wrap(err, "fail to reset follows")
	}
	return nil
}

func (s *ProfileService) resolveProfiles(ctx context.Context, ids []string) ([]model.Profile, error) {
	profiles := []model.Profile{}
	for _, id := range ids {
		profile, err := s.GetProfile(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// getOrSynthesizeLocked implements the fixture-fallback read. Synthesized
// profiles are persisted right away so their randomized counts never re-roll.
// Callers must hold profilesMu.
func (s *ProfileService) getOrSynthesizeLocked(ctx context.Context, userId string) (*model.Profile, error) {
	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}

	if profile, ok := profiles[userId]; ok {
		return &profile, nil
	}

	user, ok := s.fixtures.UserById(userId)
	if !ok {
		return nil, ErrNotFound
	}

	profile := model.Profile{
		Id:             user.Id,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		AvatarUrl:      user.AvatarUrl,
		PushToken:      user.PushToken,
		CreatedAt:      user.CreatedAt,
		FollowersCount: rand.Intn(1000) + 50,
		FollowingCount: rand.Intn(500) + 20,
	}

	profiles[userId] = profile
	if err := s.store.Set(ctx, storage.KeyProfiles, profiles); err != nil {
		return nil, errors.Wrap(err, "fail to persist profiles")
	}
	return &profile, nil
}

// loadProfiles returns the persisted profile map, empty when never written.
// Callers must hold profilesMu.
func (s *ProfileService) loadProfiles(ctx context.Context) (map[string]model.Profile, error) {
	profiles := map[string]model.Profile{}
	err := s.store.Get(ctx, storage.KeyProfiles, &profiles)
	if err != nil && err != storage.ErrNotFound {
		return nil, errors.Wrap(err, "fail to load profiles")
	}
	return profiles, nil
}

// loadFollows returns the persisted adjacency map, empty when never written.
// Callers must hold followsMu.
func (s *ProfileService) loadFollows(ctx context.Context) (map[string][]string, error) {
	follows := map[string][]string{}
	err := s.store.Get(ctx, storage.KeyFollows, &follows)
	if err != nil && err != storage.ErrNotFound {
		return nil, errors.Wrap(err, "fail to load follows")
	}
	return follows, nil
}
