package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cipolleschi/instagram/model"
	"github.com/cipolleschi/instagram/service"
	Logger "github.com/cipolleschi/instagram/utils/log"
)

// Server binds the mock data services to a REST surface so any client can
// drive them the way the original app's screens did.
type Server struct {
	Auth     *service.AuthService
	Posts    *service.PostService
	Profiles *service.ProfileService
}

func NewServer(auth *service.AuthService, posts *service.PostService, profiles *service.ProfileService) *Server {
	return &Server{
		Auth:     auth,
		Posts:    posts,
		Profiles: profiles,
	}
}

// RegisterRoutes mounts every endpoint on the given router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth/login", s.login)
	router.POST("/auth/signup", s.signup)
	router.POST("/auth/logout", s.logout)
	router.POST("/auth/refresh", s.refresh)
	router.GET("/auth/session", s.session)

	router.GET("/posts", s.listPosts)
	router.POST("/posts", s.createPost)
	router.PATCH("/posts/:id", s.updatePost)
	router.DELETE("/posts/:id", s.deletePost)
	router.POST("/posts/:id/like", s.likePost)
	router.DELETE("/posts/:id/like", s.unlikePost)
	router.GET("/posts/:id/likes", s.listPostLikes)
	router.GET("/users/:id/posts", s.listUserPosts)

	router.GET("/profiles", s.searchProfiles)
	router.GET("/profiles/:id", s.getProfile)
	router.PATCH("/profiles/:id", s.updateProfile)
	router.GET("/profiles/:id/stats", s.profileStats)
	router.POST("/profiles/:id/follow", s.followProfile)
	router.DELETE("/profiles/:id/follow", s.unfollowProfile)
	router.GET("/profiles/:id/following", s.listFollowing)
	router.GET("/profiles/:id/followers", s.listFollowers)
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := s.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session.User, "session": session})
}

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := s.Auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": session.User, "session": session})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.Auth.Logout(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) refresh(c *gin.Context) {
	session, err := s.Auth.RefreshSession(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if session == nil {
		abortWithError(c, service.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) session(c *gin.Context) {
	session, err := s.Auth.CurrentSession(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if session == nil {
		abortWithError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":       session,
		"authenticated": s.Auth.IsAuthenticated(c.Request.Context()),
	})
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := s.Posts.GetPosts(c.Request.Context(), c.Query("viewer_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) listUserPosts(c *gin.Context) {
	posts, err := s.Posts.GetPostsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) createPost(c *gin.Context) {
	var input model.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := s.Posts.CreatePost(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	var update model.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := s.Posts.UpdatePost(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	deleted, err := s.Posts.DeletePost(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !deleted {
		abortWithError(c, service.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) likePost(c *gin.Context) {
	if err := s.Posts.LikePost(c.Request.Context(), c.Param("id"), c.Query("user_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) unlikePost(c *gin.Context) {
	if err := s.Posts.UnlikePost(c.Request.Context(), c.Param("id"), c.Query("user_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listPostLikes(c *gin.Context) {
	likes, err := s.Posts.GetPostLikes(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) updateProfile(c *gin.Context) {
	var update model.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := s.Profiles.UpdateProfile(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) profileStats(c *gin.Context) {
	stats, err := s.Profiles.GetProfileStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// searchProfiles lists every seeded profile, narrowed down by the optional
// q parameter matching username or bio.
func (s *Server) searchProfiles(c *gin.Context) {
	var (
		profiles []model.Profile
		err      error
	)
	if q := c.Query("q"); q != "" {
		profiles, err = s.Profiles.SearchProfiles(c.Request.Context(), q)
	} else {
		profiles, err = s.Profiles.GetAllProfiles(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) followProfile(c *gin.Context) {
	if err := s.Profiles.FollowUser(c.Request.Context(), c.Query("user_id"), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) unfollowProfile(c *gin.Context) {
	if err := s.Profiles.UnfollowUser(c.Request.Context(), c.Query("user_id"), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listFollowing(c *gin.Context) {
	profiles, err := s.Profiles.GetFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) listFollowers(c *gin.Context) {
	profiles, err := s.Profiles.GetFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// abortWithError maps the service error taxonomy onto HTTP statuses. Storage
// failures come out as 500 so clients can tell "nothing there" apart from
// "couldn't read".
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	default:
		Logger.Log.Errorf("internal error: %s", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
