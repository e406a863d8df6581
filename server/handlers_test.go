package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/model"
	"github.com/cipolleschi/instagram/service"
	"github.com/cipolleschi/instagram/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fixtures, err := fixture.Load()
	assert.Nil(t, err)

	store := storage.NewMemoryStore()
	notifier := service.NewNotifier()
	auth := service.NewAuthService(store, fixtures, notifier)
	posts := service.NewPostService(store, fixtures, auth, notifier)
	profiles := service.NewProfileService(store, fixtures, posts)

	router := gin.New()
	NewServer(auth, posts, profiles).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method string, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "john@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User    model.User    `json:"user"`
		Session model.Session `json:"session"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "johndoe", resp.User.Username)
	assert.NotEmpty(t, resp.Session.AccessToken)
}

func TestSignupConflictEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/signup", gin.H{
		"email":    "john@example.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionEndpointWithoutLogin(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/auth/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostsEndpointSeedsAndOrders(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/posts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var posts []model.Post
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &posts))
	assert.NotEmpty(t, posts)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i-1].CreatedAt.Before(posts[i].CreatedAt))
	}
}

func TestCreatePostEndpointRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/posts", model.CreatePostInput{
		Caption:   "nope",
		Image:     "x.jpg",
		MediaType: model.MediaTypeImage,
		UserId:    "user_1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLikeUnlikeEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/posts/post_2/like?user_id=user_4", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/posts/post_2/likes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var likes []model.Like
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &likes))

	found := false
	for _, like := range likes {
		if like.UserId == "user_4" {
			found = true
		}
	}
	assert.True(t, found)

	w = doJSON(router, http.MethodDelete, "/posts/post_2/like?user_id=user_4", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/profiles/user_2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var profile model.Profile
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "janedoe", profile.Username)

	w = doJSON(router, http.MethodGet, "/profiles/user_unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPatch, "/profiles/user_2", gin.H{"bio": "updated"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "updated", profile.Bio)
	assert.Equal(t, "user_2", profile.Id)
}

func TestFollowEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/profiles/user_2/follow?user_id=user_1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/profiles/user_1/following", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var following []model.Profile
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &following))
	assert.Len(t, following, 1)
	assert.Equal(t, "user_2", following[0].Id)

	w = doJSON(router, http.MethodGet, "/profiles/user_2/followers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var followers []model.Profile
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &followers))
	assert.Len(t, followers, 1)
	assert.Equal(t, "user_1", followers[0].Id)
}
