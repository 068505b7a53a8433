package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// EngagementService toggles likes and appends comments.
type EngagementService struct {
	Posts    repository.PostRepository
	Users    repository.UserRepository
	Notifier *Notifier
	Logger   logrus.FieldLogger
	now      func() time.Time
}

func NewEngagementService(posts repository.PostRepository, users repository.UserRepository, notifier *Notifier, logger logrus.FieldLogger) *EngagementService {
	return &EngagementService{Posts: posts, Users: users, Notifier: notifier, Logger: logger, now: time.Now}
}

type LikeResult struct {
	Liked      bool
	LikesCount int
}

// ToggleLike removes the user's like when present and adds one otherwise.
// Calling it twice restores the original state.
func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	if err := checkID(postID, "Post not found"); err != nil {
		return nil, err
	}
	liked, count, err := s.Posts.ToggleLike(ctx, postID, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	likesToggled.Add(1)
	if liked && s.Notifier.Enabled() {
		s.notifyLike(ctx, postID, userID)
	}
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

type CommentResult struct {
	Comment       *entity.Comment
	CommentsCount int
}

func (s *EngagementService) AddComment(ctx context.Context, postID, userID, content string) (*CommentResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.New(apperror.InvalidContent, "Comment content is required")
	}
	if utf8.RuneCountInString(content) > entity.MaxCommentLength {
		return nil, apperror.New(apperror.InvalidContent, "Comment cannot exceed 500 characters")
	}
	if err := checkID(postID, "Post not found"); err != nil {
		return nil, err
	}
	c := &entity.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	count, err := s.Posts.AddComment(ctx, postID, c)
	if err != nil {
		return nil, err
	}
	commentsAdded.Add(1)
	if s.Notifier.Enabled() {
		s.notifyComment(ctx, postID, c)
	}
	return &CommentResult{Comment: c, CommentsCount: count}, nil
}

// notifyLike and notifyComment reload the post for its author. Lookup failures
// only cost the notification.
func (s *EngagementService) notifyLike(ctx context.Context, postID, userID string) {
	p, actor, ok := s.loadForNotify(ctx, postID, userID)
	if ok {
		s.Notifier.PostLiked(ctx, p, actor)
	}
}

func (s *EngagementService) notifyComment(ctx context.Context, postID string, c *entity.Comment) {
	p, actor, ok := s.loadForNotify(ctx, postID, c.UserID)
	if ok {
		s.Notifier.PostCommented(ctx, p, actor, c)
	}
}

func (s *EngagementService) loadForNotify(ctx context.Context, postID, userID string) (*entity.Post, *entity.User, bool) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		helpers.LogWarn(s.Logger, "notification skipped: post lookup failed", err, logrus.Fields{"post_id": postID})
		return nil, nil, false
	}
	if p.OwnedBy(userID) {
		return nil, nil, false
	}
	actor, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		helpers.LogWarn(s.Logger, "notification skipped: actor lookup failed", err, logrus.Fields{"user_id": userID})
		return nil, nil, false
	}
	return p, actor, true
}
