package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/model"
	"github.com/cipolleschi/instagram/storage"
	"github.com/cipolleschi/instagram/utils"
)

/*

PostService is CRUD over the posts and likes collections.

Both collections live in single storage slots and every mutation is a full
load-mutate-write cycle. Each collection has its own mutex so concurrent
mutations serialize instead of silently dropping each other's writes. When an
operation needs both collections it always takes postsMu before likesMu.

Seeding: the first read that finds a slot empty copies the fixture collection
into it, so later reads observe consistent data.

*/

type PostService struct {
	store    storage.Store
	fixtures *fixture.Data
	auth     *AuthService
	notifier *Notifier

	postsMu sync.Mutex
	likesMu sync.Mutex

	now func() time.Time
}

func NewPostService(store storage.Store, fixtures *fixture.Data, auth *AuthService, notifier *Notifier) *PostService {
	return &PostService{
		store:    store,
		fixtures: fixtures,
		auth:     auth,
		notifier: notifier,
		now:      time.Now,
	}
}

// GetPosts returns every post, newest first, with LikesCount and
// LikedByViewer derived from the likes collection. viewerId may be empty.
func (s *PostService) GetPosts(ctx context.Context, viewerId string) ([]model.Post, error) {
	utils.SimulateLatency()

	s.postsMu.Lock()
	posts, err := s.loadPosts(ctx)
	s.postsMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.likesMu.Lock()
	likes, err := s.loadLikes(ctx)
	s.likesMu.Unlock()
	if err != nil {
		return nil, err
	}

	for i := range posts {
		count := 0
		liked := false
		for _, like := range likes {
			if like.PostId != posts[i].Id {
				continue
			}
			count++
			if viewerId != "" && like.UserId == viewerId {
				liked = true
			}
		}
		posts[i].LikesCount = count
		posts[i].LikedByViewer = liked
	}

	// Stable: posts created in the same second keep their insertion order
	// (the stored list is prepended on create).
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// GetPostsByUser is GetPosts filtered down to one author, with the author
// also acting as the viewer.
func (s *PostService) GetPostsByUser(ctx context.Context, userId string) ([]model.Post, error) {
	posts, err := s.GetPosts(ctx, userId)
	if err != nil {
		return nil, err
	}
	res := []model.Post{}
	for _, p := range posts {
		if p.UserId == userId {
			res = append(res, p)
		}
	}
	return res, nil
}

// CreatePost prepends a new post authored by the current user. Fails with
// ErrUnauthenticated when nobody is logged in.
func (s *PostService) CreatePost(ctx context.Context, input model.CreatePostInput) (*model.Post, error) {
	utils.SimulateLatency()

	currentUser, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if currentUser == nil {
		return nil, ErrUnauthenticated
	}

	post := model.Post{
		Id:        "post_" + uuid.New().String(),
		Image:     input.Image,
		MediaType: input.MediaType,
		Caption:   input.Caption,
		UserId:    input.UserId,
		CreatedAt: s.now(),
		Author: model.PostAuthor{
			Id:        currentUser.Id,
			Username:  currentUser.Username,
			AvatarUrl: currentUser.AvatarUrl,
			Bio:       currentUser.Bio,
		},
	}

	s.postsMu.Lock()
	posts, err := s.loadPosts(ctx)
	if err != nil {
		s.postsMu.Unlock()
		return nil, err
	}
	posts = append([]model.Post{post}, posts...)
	if err := s.store.Set(ctx, storage.KeyPosts, posts); err != nil {
		s.postsMu.Unlock()
		return nil, errors.Wrap(err, "fail to persist posts")
	}
	s.postsMu.Unlock()

	s.notifier.SendPostCreated(post.Id)
	return &post, nil
}

// UpdatePost merges the given fields into an existing post.
func (s *PostService) UpdatePost(ctx context.Context, postId string, update model.PostUpdate) (*model.Post, error) {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if posts[i].Id != postId {
			continue
		}
		if update.Caption != nil {
			posts[i].Caption = *update.Caption
		}
		if err := s.store.Set(ctx, storage.KeyPosts, posts); err != nil {
			return nil, errors.Wrap(err, "fail to persist posts")
		}
		post := posts[i]
		return &post, nil
	}
	return nil, ErrNotFound
}

// DeletePost removes the post and cascades removal of all its likes. Returns
// false unless a post with that id AND that author exists.
func (s *PostService) DeletePost(ctx context.Context, postId string, userId string) (bool, error) {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return false, err
	}

	idx := -1
	for i := range posts {
		if posts[i].Id == postId && posts[i].UserId == userId {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	posts = append(posts[:idx], posts[idx+1:]...)
	if err := s.store.Set(ctx, storage.KeyPosts, posts); err != nil {
		return false, errors.Wrap(err, "fail to persist posts")
	}

	s.likesMu.Lock()
	defer s.likesMu.Unlock()

	likes, err := s.loadLikes(ctx)
	if err != nil {
		return false, err
	}
	kept := []model.Like{}
	for _, like := range likes {
		if like.PostId != postId {
			kept = append(kept, like)
		}
	}
	if err := s.store.Set(ctx, storage.KeyLikes, kept); err != nil {
		return false, errors.Wrap(err, "fail to persist likes")
	}
	return true, nil
}

// LikePost records a like for (postId, userId). Liking an already-liked post
// is a no-op. The post is not checked for existence.
func (s *PostService) LikePost(ctx context.Context, postId string, userId string) error {
	s.likesMu.Lock()

	likes, err := s.loadLikes(ctx)
	if err != nil {
		s.likesMu.Unlock()
		return err
	}

	for _, like := range likes {
		if like.PostId == postId && like.UserId == userId {
			s.likesMu.Unlock()
			return nil
		}
	}

	like := model.Like{
		Id:        "like_" + uuid.New().String(),
		UserId:    userId,
		PostId:    postId,
		CreatedAt: s.now(),
	}
	likes = append(likes, like)
	if err := s.store.Set(ctx, storage.KeyLikes, likes); err != nil {
		s.likesMu.Unlock()
		return errors.Wrap(err, "fail to persist likes")
	}
	s.likesMu.Unlock()

	if currentUser, err := s.auth.CurrentUser(ctx); err == nil && currentUser != nil {
		s.notifier.SendLike(&like, currentUser.Username)
	}
	return nil
}

// UnlikePost removes the (postId, userId) like if present; absent likes are
// a silent no-op.
func (s *PostService) UnlikePost(ctx context.Context, postId string, userId string) error {
	s.likesMu.Lock()
	defer s.likesMu.Unlock()

	likes, err := s.loadLikes(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range likes {
		if likes[i].PostId == postId && likes[i].UserId == userId {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	likes = append(likes[:idx], likes[idx+1:]...)
	if err := s.store.Set(ctx, storage.KeyLikes, likes); err != nil {
		return errors.Wrap(err, "fail to persist likes")
	}
	return nil
}

// IsPostLiked reports whether userId has liked postId.
func (s *PostService) IsPostLiked(ctx context.Context, postId string, userId string) (bool, error) {
	likes, err := s.GetPostLikes(ctx, postId)
	if err != nil {
		return false, err
	}
	for _, like := range likes {
		if like.UserId == userId {
			return true, nil
		}
	}
	return false, nil
}

// GetPostLikes returns every like referencing postId.
func (s *PostService) GetPostLikes(ctx context.Context, postId string) ([]model.Like, error) {
	s.likesMu.Lock()
	likes, err := s.loadLikes(ctx)
	s.likesMu.Unlock()
	if err != nil {
		return nil, err
	}

	res := []model.Like{}
	for _, like := range likes {
		if like.PostId == postId {
			res = append(res, like)
		}
	}
	return res, nil
}

// GetUserPostCount counts the posts authored by userId.
func (s *PostService) GetUserPostCount(ctx context.Context, userId string) (int, error) {
	posts, err := s.GetPostsByUser(ctx, userId)
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

// ResetPosts rewrites both collections back to their fixture state, a
// development helper carried over from the original client.
func (s *PostService) ResetPosts(ctx context.Context) error {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()
	s.likesMu.Lock()
	defer s.likesMu.Unlock()

	if err := s.store.Set(ctx, storage.KeyPosts, s.fixtures.Posts()); err != nil {
		return errors.Wrap(err, "fail to reset posts")
	}
	if err := s.store.Set(ctx, storage.KeyLikes, s.fixtures.Likes()); err != nil {
		return errors.Wrap(err, "fail to reset likes")
	}
	return nil
}

// loadPosts returns the persisted post list, seeding it from fixtures on
// first access. Callers must hold postsMu.
func (s *PostService) loadPosts(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	err := s.store.Get(ctx, storage.KeyPosts, &posts)
	if err == storage.ErrNotFound {
		posts = s.fixtures.Posts()
		if err := s.store.Set(ctx, storage.KeyPosts, posts); err != nil {
			return nil, errors.Wrap(err, "fail to seed posts")
		}
		return posts, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to load posts")
	}
	return posts, nil
}

// loadLikes is loadPosts for the likes slot. Callers must hold likesMu.
func (s *PostService) loadLikes(ctx context.Context) ([]model.Like, error) {
	likes := []model.Like{}
	err := s.store.Get(ctx, storage.KeyLikes, &likes)
	if err == storage.ErrNotFound {
		likes = s.fixtures.Likes()
		if err := s.store.Set(ctx, storage.KeyLikes, likes); err != nil {
			return nil, errors.Wrap(err, "fail to seed likes")
		}
		return likes, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to load likes")
	}
	return likes, nil
}
