package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cipolleschi/instagram/model"
)

func TestGetProfileFallsBackToFixtures(t *testing.T) {
	s := newTestServices(t)

	profile, err := s.Profiles.GetProfile(context.Background(), "user_1")
	assert.Nil(t, err)
	assert.Equal(t, "user_1", profile.Id)
	assert.Equal(t, "johndoe", profile.Username)
	assert.GreaterOrEqual(t, profile.FollowersCount, 50)
	assert.GreaterOrEqual(t, profile.FollowingCount, 20)
}

func TestGetProfileUnknownUser(t *testing.T) {
	s := newTestServices(t)

	_, err := s.Profiles.GetProfile(context.Background(), "user_unknown")
	assert.Equal(t, ErrNotFound, err)
}

func TestSynthesizedStatsAreStable(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	first, err := s.Profiles.GetProfile(ctx, "user_3")
	assert.Nil(t, err)
	second, err := s.Profiles.GetProfile(ctx, "user_3")
	assert.Nil(t, err)

	// The randomized counts persist on first synthesis instead of re-rolling.
	assert.Equal(t, first.FollowersCount, second.FollowersCount)
	assert.Equal(t, first.FollowingCount, second.FollowingCount)
}

func TestUpdateProfileKeepsId(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	bio := "x"
	updated, err := s.Profiles.UpdateProfile(ctx, "user_1", model.ProfileUpdate{Bio: &bio})
	assert.Nil(t, err)
	assert.Equal(t, "user_1", updated.Id)
	assert.Equal(t, "x", updated.Bio)

	reloaded, err := s.Profiles.GetProfile(ctx, "user_1")
	assert.Nil(t, err)
	assert.Equal(t, "x", reloaded.Bio)
	assert.Equal(t, "user_1", reloaded.Id)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	s := newTestServices(t)

	bio := "x"
	_, err := s.Profiles.UpdateProfile(context.Background(), "user_unknown", model.ProfileUpdate{Bio: &bio})
	assert.Equal(t, ErrNotFound, err)
}

func TestGetProfileStatsCombinesLivePostCount(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	profile, err := s.Profiles.GetProfile(ctx, "user_1")
	assert.Nil(t, err)
	postCount, err := s.Posts.GetUserPostCount(ctx, "user_1")
	assert.Nil(t, err)

	stats, err := s.Profiles.GetProfileStats(ctx, "user_1")
	assert.Nil(t, err)
	assert.Equal(t, postCount, stats.PostsCount)
	assert.Equal(t, profile.FollowersCount, stats.FollowersCount)
	assert.Equal(t, profile.FollowingCount, stats.FollowingCount)
}

func TestFollowUserIsIdempotent(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_1", "user_2"))
	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_1", "user_2"))

	following, err := s.Profiles.GetFollowing(ctx, "user_1")
	assert.Nil(t, err)
	assert.Len(t, following, 1)
	assert.Equal(t, "user_2", following[0].Id)

	isFollowing, err := s.Profiles.IsFollowing(ctx, "user_1", "user_2")
	assert.Nil(t, err)
	assert.True(t, isFollowing)
}

func TestUnfollowUser(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_1", "user_2"))
	assert.Nil(t, s.Profiles.UnfollowUser(ctx, "user_1", "user_2"))
	// Unfollowing an absent edge is a no-op.
	assert.Nil(t, s.Profiles.UnfollowUser(ctx, "user_1", "user_2"))

	isFollowing, err := s.Profiles.IsFollowing(ctx, "user_1", "user_2")
	assert.Nil(t, err)
	assert.False(t, isFollowing)
}

func TestGetFollowersIsRealReverseScan(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_2", "user_1"))
	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_3", "user_1"))
	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_3", "user_4"))

	followers, err := s.Profiles.GetFollowers(ctx, "user_1")
	assert.Nil(t, err)
	assert.Len(t, followers, 2)
	assert.Equal(t, "user_2", followers[0].Id)
	assert.Equal(t, "user_3", followers[1].Id)

	followers, err = s.Profiles.GetFollowers(ctx, "user_5")
	assert.Nil(t, err)
	assert.Empty(t, followers)
}

func TestSearchProfiles(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	byUsername, err := s.Profiles.SearchProfiles(ctx, "jane")
	assert.Nil(t, err)
	assert.Len(t, byUsername, 1)
	assert.Equal(t, "janedoe", byUsername[0].Username)

	byBio, err := s.Profiles.SearchProfiles(ctx, "travel")
	assert.Nil(t, err)
	assert.Len(t, byBio, 1)
	assert.Equal(t, "user_2", byBio[0].Id)

	none, err := s.Profiles.SearchProfiles(ctx, "zzz-no-match")
	assert.Nil(t, err)
	assert.Empty(t, none)
}

func TestResetProfiles(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	bio := "temporary"
	_, err := s.Profiles.UpdateProfile(ctx, "user_1", model.ProfileUpdate{Bio: &bio})
	assert.Nil(t, err)
	assert.Nil(t, s.Profiles.FollowUser(ctx, "user_1", "user_2"))

	assert.Nil(t, s.Profiles.ResetProfiles(ctx))

	profile, err := s.Profiles.GetProfile(ctx, "user_1")
	assert.Nil(t, err)
	assert.NotEqual(t, "temporary", profile.Bio)

	isFollowing, err := s.Profiles.IsFollowing(ctx, "user_1", "user_2")
	assert.Nil(t, err)
	assert.False(t, isFollowing)
}
