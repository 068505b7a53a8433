package application

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

const maxImageRefLength = 2048

// PostService creates, reads and deletes posts and assembles feeds.
type PostService struct {
	Posts        repository.PostRepository
	Users        repository.UserRepository
	Logger       logrus.FieldLogger
	DefaultLimit int
	MaxLimit     int
	now          func() time.Time
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger logrus.FieldLogger, defaultLimit, maxLimit int) *PostService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &PostService{
		Posts:        posts,
		Users:        users,
		Logger:       logger,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
		now:          time.Now,
	}
}

func (s *PostService) Create(ctx context.Context, authorID, content, image string) (*entity.Post, error) {
	// The limit applies to the content as submitted, surrounding spaces included.
	if utf8.RuneCountInString(content) > entity.MaxPostLength {
		return nil, apperror.New(apperror.InvalidContent, "Post content cannot exceed 1000 characters")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.New(apperror.InvalidContent, "Post content is required")
	}
	image = strings.TrimSpace(image)
	if len(image) > maxImageRefLength {
		return nil, apperror.New(apperror.InvalidContent, "Image reference is too long")
	}
	if err := checkID(authorID, "User not found"); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &entity.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		Image:     image,
		Likes:     []entity.Like{},
		Comments:  []entity.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	postsCreated.Add(1)
	return p, nil
}

func (s *PostService) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	if err := checkID(id, "Post not found"); err != nil {
		return nil, err
	}
	return s.Posts.GetByID(ctx, id)
}

// Delete removes the post with its likes and comments. Only the author may
// delete.
func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.OwnedBy(requesterID) {
		return apperror.New(apperror.Forbidden, "Not authorized to delete this post")
	}
	if err := s.Posts.Delete(ctx, id); err != nil {
		return err
	}
	postsDeleted.Add(1)
	return nil
}

// PageRequest is a normalized page number and size.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit query values leniently: anything that is not
// a positive integer falls back to page 1 and the default size. Sizes above
// the maximum are capped.
func (s *PostService) ParsePage(page, limit string) PageRequest {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil || p < 1 {
		p = 1
	}
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil || l < 1 {
		l = s.DefaultLimit
	}
	if l > s.MaxLimit {
		l = s.MaxLimit
	}
	return PageRequest{Page: p, Limit: l}
}

type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalPosts  int
	HasNextPage bool
	HasPrevPage bool
}

type FeedPage struct {
	Posts      []*entity.Post
	Pagination Pagination
}

func (s *PostService) Feed(ctx context.Context, req PageRequest) (*FeedPage, error) {
	return s.list(ctx, repository.PostFilter{}, req)
}

// UserFeed lists one author's posts. An unknown author is NotFound rather
// than an empty page.
func (s *PostService) UserFeed(ctx context.Context, authorID string, req PageRequest) (*FeedPage, error) {
	if err := checkID(authorID, "User not found"); err != nil {
		return nil, err
	}
	if _, err := s.Users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.PostFilter{AuthorID: authorID}, req)
}

func (s *PostService) list(ctx context.Context, filter repository.PostFilter, req PageRequest) (*FeedPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = s.DefaultLimit
	}
	total, err := s.Posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	totalPages := (total + req.Limit - 1) / req.Limit

	posts := []*entity.Post{}
	offset := (req.Page - 1) * req.Limit
	if offset < total {
		posts, err = s.Posts.List(ctx, filter, offset, req.Limit)
		if err != nil {
			return nil, err
		}
	}
	return &FeedPage{
		Posts: posts,
		Pagination: Pagination{
			CurrentPage: req.Page,
			TotalPages:  totalPages,
			TotalPosts:  total,
			HasNextPage: req.Page < totalPages,
			HasPrevPage: req.Page > 1,
		},
	}, nil
}
