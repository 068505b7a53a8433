package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

type userView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Website:        u.Website,
		CreatedAt:      u.CreatedAt,
	}
}

type searchUserView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
	Location       string `json:"location"`
}

type authorView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type commentUserView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

type likeView struct {
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentView struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	User      commentUserView `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
}

type postView struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	Image         string        `json:"image"`
	Author        authorView    `json:"author"`
	Likes         []likeView    `json:"likes"`
	Comments      []commentView `json:"comments"`
	LikesCount    int           `json:"likesCount"`
	CommentsCount int           `json:"commentsCount"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type paginationView struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func toCommentView(c *entity.Comment) commentView {
	return commentView{
		ID:      c.ID,
		Content: c.Content,
		User: commentUserView{
			ID:             c.Author.ID,
			Name:           c.Author.Name,
			ProfilePicture: c.Author.ProfilePicture,
		},
		CreatedAt: c.CreatedAt,
	}
}

func toPostView(p *entity.Post) postView {
	v := postView{
		ID:      p.ID,
		Content: p.Content,
		Image:   p.Image,
		Author: authorView{
			ID:             p.Author.ID,
			Name:           p.Author.Name,
			Email:          p.Author.Email,
			Bio:            p.Author.Bio,
			ProfilePicture: p.Author.ProfilePicture,
		},
		Likes:         make([]likeView, 0, len(p.Likes)),
		Comments:      make([]commentView, 0, len(p.Comments)),
		LikesCount:    p.LikesCount(),
		CommentsCount: p.CommentsCount(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, l := range p.Likes {
		v.Likes = append(v.Likes, likeView{User: l.UserID, CreatedAt: l.CreatedAt})
	}
	for i := range p.Comments {
		v.Comments = append(v.Comments, toCommentView(&p.Comments[i]))
	}
	return v
}

func toFeedView(page *application.FeedPage) gin.H {
	posts := make([]postView, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, toPostView(p))
	}
	pg := page.Pagination
	return gin.H{
		"posts": posts,
		"pagination": paginationView{
			CurrentPage: pg.CurrentPage,
			TotalPages:  pg.TotalPages,
			TotalPosts:  pg.TotalPosts,
			HasNextPage: pg.HasNextPage,
			HasPrevPage: pg.HasPrevPage,
		},
	}
}
