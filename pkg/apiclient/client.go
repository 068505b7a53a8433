// Package apiclient is a small Go client for the social API.
//
// The client holds no credential. Each authenticated call reads the bearer
// token from its context, so one Client can serve many users concurrently:
//
//	ctx := apiclient.WithCredential(ctx, token)
//	post, err := c.CreatePost(ctx, "hello", "")
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type credentialKey struct{}

// WithCredential returns a context that authenticates calls as token.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFrom returns the token stored by WithCredential.
func CredentialFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(credentialKey{}).(string)
	return tok, ok && tok != ""
}

// Error is a non-2xx API response.
type Error struct {
	Status    int
	Message   string `json:"error"`
	RequestID string `json:"request_id"`
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: %d %s (request %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Author struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type Like struct {
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	User    struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		ProfilePicture string `json:"profilePicture"`
	} `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Image         string    `json:"image"`
	Author        Author    `json:"author"`
	Likes         []Like    `json:"likes"`
	Comments      []Comment `json:"comments"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type Feed struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type CommentResult struct {
	Comment       Comment `json:"comment"`
	CommentsCount int     `json:"commentsCount"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Feed returns one page of the global feed. Zero page or limit lets the
// server choose.
func (c *Client) Feed(ctx context.Context, page, limit int) (*Feed, error) {
	var out Feed
	if err := c.do(ctx, http.MethodGet, "/post/feed"+pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserPosts(ctx context.Context, userID string, page, limit int) (*Feed, error) {
	var out Feed
	path := "/post/user-posts/" + url.PathEscape(userID) + pageQuery(page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePost(ctx context.Context, content, image string) (*Post, error) {
	var out struct {
		Post Post `json:"post"`
	}
	body := map[string]string{"content": content, "image": image}
	if err := c.do(ctx, http.MethodPost, "/post/create", body, &out); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	var out struct {
		Post Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodGet, "/post/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (*LikeResult, error) {
	var out LikeResult
	if err := c.do(ctx, http.MethodPost, "/post/"+url.PathEscape(postID)+"/like", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Comment(ctx context.Context, postID, content string) (*CommentResult, error) {
	var out CommentResult
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/post/"+url.PathEscape(postID)+"/comment", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/post/"+url.PathEscape(postID), nil, nil)
}

func pageQuery(page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := CredentialFrom(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
