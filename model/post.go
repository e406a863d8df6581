package model

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

/*

Post is a single feed entry

Id: primary key, collision-resistant (uuid suffix), unique across the list
Image: logical media reference, resolved by the client's asset resolver
MediaType: "image" or "video"
Caption: free text, the only field mutable after creation
UserId: author, "belongs-to" relation
CreatedAt: time when entity is created; the stored list is kept newest-first
Author: snapshot of the author's displayable fields taken at creation time

LikesCount: derived, count of likes referencing this post
LikedByViewer: derived, whether the viewer passed to GetPosts liked this post

*/

type Post struct {
	Id        string     `json:"id"`
	Image     string     `json:"image"`
	MediaType MediaType  `json:"media_type"`
	Caption   string     `json:"caption"`
	UserId    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Author    PostAuthor `json:"user"`

	LikesCount    int  `json:"likes_count"`
	LikedByViewer bool `json:"liked_by_viewer"`
}

// PostAuthor is the subset of User displayable alongside a post.
type PostAuthor struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	AvatarUrl string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// CreatePostInput carries the caller-supplied fields of a new post.
type CreatePostInput struct {
	Caption   string    `json:"caption"`
	Image     string    `json:"image"`
	MediaType MediaType `json:"media_type"`
	UserId    string    `json:"user_id"`
}

// PostUpdate lists the mutable post fields. Nil means "leave unchanged".
type PostUpdate struct {
	Caption *string `json:"caption"`
}
