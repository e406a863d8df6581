package model

import "time"

/*

Like is a user liking a post

Id: primary key
UserId: liking user
PostId: liked post
CreatedAt: time when relation is created

At most one Like exists per (UserId, PostId) pair. Duplicate like attempts
are idempotent no-ops. Likes are destroyed when their post is deleted or
when explicitly unliked.

*/

type Like struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	PostId    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
