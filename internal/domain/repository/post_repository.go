package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

// PostFilter narrows a feed listing. An empty AuthorID means the global feed.
type PostFilter struct {
	AuthorID string
}

// PostRepository is the Post Store Accessor.
//
// Reads return posts with the author summary, likes and comment author
// summaries joined in. Listings are ordered by creation time descending with
// id descending as the tie breaker.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	// Delete removes the post together with its likes and comments.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*entity.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	// ToggleLike removes the user's like if present, otherwise adds one.
	// Likes from different users never overwrite each other.
	ToggleLike(ctx context.Context, postID, userID string, at time.Time) (liked bool, likesCount int, err error)
	// AddComment appends c and returns the resulting comment count.
	AddComment(ctx context.Context, postID string, c *entity.Comment) (commentsCount int, err error)
	Ping(ctx context.Context) error
}
