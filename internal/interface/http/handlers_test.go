package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	notifier := application.NewNotifier(nil, logger, "social", "http://app.test")

	auth := application.NewAuthService(store.Users(), nil, jwt, notifier, logger)
	users := application.NewUserService(store.Users(), nil, nil, "", logger)
	posts := application.NewPostService(store.Posts(), store.Users(), logger, 10, 50)
	engagement := application.NewEngagementService(store.Posts(), store.Users(), notifier, logger)

	ah := NewAuthHandler(auth, logger)
	uh := NewUserHandler(users, logger)
	ph := NewPostHandler(posts, engagement, logger)
	hh := NewHealthHandler(store.Posts(), "memory", logger)
	guard := middleware.Auth(auth, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/health", hh.Health)
	api := r.Group("/api")
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.GET("/auth/verify", guard, ah.Verify)

	api.GET("/user/me", guard, uh.Me)
	api.PUT("/user/me", guard, uh.UpdateMe)
	api.POST("/user/me/avatar", guard, uh.UploadAvatar)
	api.GET("/user/search/:query", uh.Search)
	api.GET("/user/:id", uh.GetByID)

	api.GET("/post/feed", ph.Feed)
	api.GET("/post/user-posts/:userId", ph.UserPosts)
	api.GET("/post/:id", ph.Get)
	api.POST("/post/create", guard, ph.Create)
	api.POST("/post/:id/like", guard, ph.Like)
	api.POST("/post/:id/comment", guard, ph.Comment)
	api.DELETE("/post/:id", guard, ph.Delete)

	return &testServer{engine: r, store: store}
}

// do sends body as JSON and decodes the response into a generic map.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decoding %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

type account struct {
	id    string
	token string
}

func (s *testServer) register(t *testing.T, name, email string) account {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %v", email, code, body)
	}
	user := body["user"].(map[string]any)
	return account{id: user["id"].(string), token: body["token"].(string)}
}

func (s *testServer) createPost(t *testing.T, a account, content string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/post/create", a.token, gin.H{"content": content})
	if code != http.StatusCreated {
		t.Fatalf("create post: status = %d, body = %v", code, body)
	}
	return body["post"].(map[string]any)["id"].(string)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "Ann Lee", "Ann@Example.com")

	code, body := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "secret123"})
	if code != http.StatusOK || body["message"] != "Login successful" {
		t.Fatalf("login: status = %d, body = %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/auth/verify", ann.token, nil)
	if code != http.StatusOK || body["valid"] != true {
		t.Fatalf("verify: status = %d, body = %v", code, body)
	}
	if _, leaked := body["user"].(map[string]any)["password"]; leaked {
		t.Error("verify response exposes the password hash")
	}

	code, body = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret123"})
	if code != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want 409 (%v)", code, body)
	}

	code, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong-pass"})
	if code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", code)
	}

	code, body = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "A", "email": "nope", "password": "1"})
	if code != http.StatusBadRequest {
		t.Errorf("invalid register: status = %d, want 400", code)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("invalid register: empty error message")
	}
}

func TestGuardRejections(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{"missing", "", "No token, authorization denied"},
		{"garbage", "not-a-token", "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := s.do(t, http.MethodPost, "/api/post/create", tc.token, gin.H{"content": "hi"})
			if code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", code)
			}
			if body["error"] != tc.want {
				t.Errorf("error = %v, want %q", body["error"], tc.want)
			}
			if id, _ := body["request_id"].(string); id == "" {
				t.Error("request_id missing from error body")
			}
		})
	}
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "Ann Lee", "ann@example.com")
	bob := s.register(t, "Bob Ray", "bob@example.com")

	postID := s.createPost(t, ann, "  hello world  ")

	code, body := s.do(t, http.MethodGet, "/api/post/"+postID, bob.token, nil)
	if code != http.StatusOK {
		t.Fatalf("get post: status = %d", code)
	}
	post := body["post"].(map[string]any)
	if post["content"] != "hello world" {
		t.Errorf("content = %q, want trimmed", post["content"])
	}
	if post["author"].(map[string]any)["name"] != "Ann Lee" {
		t.Errorf("author = %v", post["author"])
	}

	code, body = s.do(t, http.MethodPost, "/api/post/"+postID+"/like", bob.token, nil)
	if code != http.StatusOK || body["liked"] != true || body["likesCount"] != float64(1) || body["message"] != "Post liked" {
		t.Fatalf("like: status = %d, body = %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/post/"+postID+"/like", bob.token, nil)
	if code != http.StatusOK || body["liked"] != false || body["likesCount"] != float64(0) || body["message"] != "Post unliked" {
		t.Fatalf("unlike: status = %d, body = %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/post/"+postID+"/comment", bob.token, gin.H{"content": " nice "})
	if code != http.StatusCreated || body["commentsCount"] != float64(1) {
		t.Fatalf("comment: status = %d, body = %v", code, body)
	}
	comment := body["comment"].(map[string]any)
	if comment["content"] != "nice" || comment["user"].(map[string]any)["name"] != "Bob Ray" {
		t.Errorf("comment = %v", comment)
	}

	code, body = s.do(t, http.MethodDelete, "/api/post/"+postID, bob.token, nil)
	if code != http.StatusForbidden || body["error"] != "Not authorized to delete this post" {
		t.Errorf("foreign delete: status = %d, body = %v", code, body)
	}
	code, body = s.do(t, http.MethodDelete, "/api/post/"+postID, ann.token, nil)
	if code != http.StatusOK || body["message"] != "Post deleted successfully" {
		t.Fatalf("delete: status = %d, body = %v", code, body)
	}
	code, _ = s.do(t, http.MethodGet, "/api/post/"+postID, ann.token, nil)
	if code != http.StatusNotFound {
		t.Errorf("get deleted post: status = %d, want 404", code)
	}
	code, _ = s.do(t, http.MethodPost, "/api/post/"+postID+"/like", bob.token, nil)
	if code != http.StatusNotFound {
		t.Errorf("like deleted post: status = %d, want 404", code)
	}
}

func TestPostValidation(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "Ann Lee", "ann@example.com")
	postID := s.createPost(t, ann, "first")

	long := string(bytes.Repeat([]byte("a"), 1001))
	cases := []struct {
		name string
		path string
		body any
		want int
		msg  string
	}{
		{"blank post", "/api/post/create", gin.H{"content": "   "}, http.StatusBadRequest, "Post content is required"},
		{"long post", "/api/post/create", gin.H{"content": long}, http.StatusBadRequest, "Post content cannot exceed 1000 characters"},
		{"blank comment", "/api/post/" + postID + "/comment", gin.H{"content": ""}, http.StatusBadRequest, "Comment content is required"},
		{"long comment", "/api/post/" + postID + "/comment", gin.H{"content": long[:501]}, http.StatusBadRequest, "Comment cannot exceed 500 characters"},
		{"comment on malformed id", "/api/post/123/comment", gin.H{"content": "hi"}, http.StatusNotFound, "Post not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := s.do(t, http.MethodPost, tc.path, ann.token, tc.body)
			if code != tc.want || body["error"] != tc.msg {
				t.Errorf("status = %d, error = %v, want %d %q", code, body["error"], tc.want, tc.msg)
			}
		})
	}
}

func TestFeedPagination(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "Ann Lee", "ann@example.com")
	bob := s.register(t, "Bob Ray", "bob@example.com")
	for i := 0; i < 3; i++ {
		s.createPost(t, ann, "ann post")
	}
	s.createPost(t, bob, "bob post")

	code, body := s.do(t, http.MethodGet, "/api/post/feed?page=2&limit=3", ann.token, nil)
	if code != http.StatusOK {
		t.Fatalf("feed: status = %d", code)
	}
	if n := len(body["posts"].([]any)); n != 1 {
		t.Errorf("page 2 has %d posts, want 1", n)
	}
	pg := body["pagination"].(map[string]any)
	want := map[string]any{
		"currentPage": float64(2), "totalPages": float64(2), "totalPosts": float64(4),
		"hasNextPage": false, "hasPrevPage": true,
	}
	for k, v := range want {
		if pg[k] != v {
			t.Errorf("pagination[%s] = %v, want %v", k, pg[k], v)
		}
	}

	code, body = s.do(t, http.MethodGet, "/api/post/feed?page=abc&limit=-4", "", nil)
	if code != http.StatusOK || body["pagination"].(map[string]any)["currentPage"] != float64(1) {
		t.Errorf("lenient feed: status = %d, body = %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/post/user-posts/"+bob.id, ann.token, nil)
	if code != http.StatusOK || len(body["posts"].([]any)) != 1 {
		t.Errorf("user posts: status = %d, body = %v", code, body)
	}
	code, _ = s.do(t, http.MethodGet, "/api/post/user-posts/not-a-user", ann.token, nil)
	if code != http.StatusNotFound {
		t.Errorf("user posts for unknown user: status = %d, want 404", code)
	}
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "Ann Lee", "ann@example.com")
	s.register(t, "Bob Ray", "bob@example.com")

	code, body := s.do(t, http.MethodPut, "/api/user/me", ann.token, gin.H{"bio": "gopher", "location": "Jakarta"})
	if code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %v", code, body)
	}
	if body["user"].(map[string]any)["bio"] != "gopher" {
		t.Errorf("bio = %v", body["user"])
	}

	code, body = s.do(t, http.MethodGet, "/api/user/me", ann.token, nil)
	if code != http.StatusOK || body["user"].(map[string]any)["location"] != "Jakarta" {
		t.Errorf("me: status = %d, body = %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/user/search/go", ann.token, nil)
	if code != http.StatusOK || len(body["users"].([]any)) != 1 {
		t.Errorf("search: status = %d, body = %v", code, body)
	}
	code, body = s.do(t, http.MethodGet, "/api/user/search/a", ann.token, nil)
	if code != http.StatusBadRequest || body["error"] != "Search query must be at least 2 characters long" {
		t.Errorf("short search: status = %d, body = %v", code, body)
	}

	code, _ = s.do(t, http.MethodGet, "/api/user/"+ann.id, ann.token, nil)
	if code != http.StatusOK {
		t.Errorf("get user: status = %d", code)
	}
	code, _ = s.do(t, http.MethodGet, "/api/user/00000000-0000-0000-0000-000000000000", ann.token, nil)
	if code != http.StatusNotFound {
		t.Errorf("get missing user: status = %d, want 404", code)
	}

	code, _ = s.do(t, http.MethodPost, "/api/user/me/avatar", ann.token, nil)
	if code != http.StatusBadRequest {
		t.Errorf("avatar without file: status = %d, want 400", code)
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || body["status"] != "ok" || body["store"] != "memory" {
		t.Errorf("health: status = %d, body = %v", code, body)
	}

	logger, _ := test.NewNullLogger()
	r := gin.New()
	r.GET("/health", NewHealthHandler(downPinger{}, "postgres", logger).Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded health: status = %d, want 503", w.Code)
	}
}
