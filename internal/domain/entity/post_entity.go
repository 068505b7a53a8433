package entity

import "time"

const (
	MaxPostLength    = 1000
	MaxCommentLength = 500
)

// Post is owned by its author. Likes and Comments belong exclusively to the
// post and are removed with it.
type Post struct {
	ID        string
	AuthorID  string
	Author    UserSummary
	Content   string
	Image     string
	Likes     []Like
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Like is at most one per (post, user).
type Like struct {
	UserID    string
	CreatedAt time.Time
}

// Comment is append-only; comments are ordered by insertion.
type Comment struct {
	ID        string
	UserID    string
	Author    UserSummary
	Content   string
	CreatedAt time.Time
}

// LikesCount and CommentsCount are derived on read and never stored.
func (p *Post) LikesCount() int { return len(p.Likes) }

func (p *Post) CommentsCount() int { return len(p.Comments) }

func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Post) OwnedBy(userID string) bool {
	return p.AuthorID != "" && p.AuthorID == userID
}
