package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/pkg/response"
)

type PostHandler struct {
	Posts      *application.PostService
	Engagement *application.EngagementService
	Logger     logrus.FieldLogger
}

func NewPostHandler(posts *application.PostService, engagement *application.EngagementService, logger logrus.FieldLogger) *PostHandler {
	return &PostHandler{Posts: posts, Engagement: engagement, Logger: logger}
}

// Content limits are checked by the service so the messages stay uniform
// across transports.
type createPostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create POST /api/post/create
func (h *PostHandler) Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Posts.Create(c.Request.Context(), u.ID, req.Content, req.Image)
	if err != nil {
		fail(c, h.Logger, err, "Server error creating post")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    toPostView(p),
	})
}

// Feed GET /api/post/feed?page=&limit=
func (h *PostHandler) Feed(c *gin.Context) {
	req := h.Posts.ParsePage(c.Query("page"), c.Query("limit"))
	page, err := h.Posts.Feed(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err, "Server error getting feed")
		return
	}
	response.Success(c, http.StatusOK, toFeedView(page))
}

// UserPosts GET /api/post/user-posts/:userId?page=&limit=
func (h *PostHandler) UserPosts(c *gin.Context) {
	req := h.Posts.ParsePage(c.Query("page"), c.Query("limit"))
	page, err := h.Posts.UserFeed(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		fail(c, h.Logger, err, "Server error getting user posts")
		return
	}
	response.Success(c, http.StatusOK, toFeedView(page))
}

// Get GET /api/post/:id
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "Server error getting post")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": toPostView(p)})
}

// Like POST /api/post/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := h.Engagement.ToggleLike(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		fail(c, h.Logger, err, "Server error liking/unliking post")
		return
	}
	msg := "Post unliked"
	if res.Liked {
		msg = "Post liked"
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":    msg,
		"liked":      res.Liked,
		"likesCount": res.LikesCount,
	})
}

// Comment POST /api/post/:id/comment
func (h *PostHandler) Comment(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Engagement.AddComment(c.Request.Context(), c.Param("id"), u.ID, req.Content)
	if err != nil {
		fail(c, h.Logger, err, "Server error adding comment")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":       "Comment added successfully",
		"comment":       toCommentView(res.Comment),
		"commentsCount": res.CommentsCount,
	})
}

// Delete DELETE /api/post/:id
func (h *PostHandler) Delete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Posts.Delete(c.Request.Context(), c.Param("id"), u.ID); err != nil {
		fail(c, h.Logger, err, "Server error deleting post")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
