package model

import "time"

/*

Profile is the public view of a user, a superset of User

FollowersCount/FollowingCount: synthesized once on first fixture fallback,
	then persisted so repeated reads observe stable numbers
PostsCount: derived from the live post list, never stored

Profiles live in their own storage slot, distinct from the user snapshot
embedded in an issued Session.

*/

type Profile struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	AvatarUrl string    `json:"avatar_url"`
	PushToken *string   `json:"push_token"`
	CreatedAt time.Time `json:"created_at"`

	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	PostsCount     int `json:"posts_count"`
}

// ProfileUpdate lists the mutable profile fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	AvatarUrl *string `json:"avatar_url"`
}

type ProfileStats struct {
	PostsCount     int `json:"posts_count"`
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}
