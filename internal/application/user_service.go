package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

const (
	MinSearchLength  = 2
	MaxSearchResults = 20
)

type UserService struct {
	Users     repository.UserRepository
	Index     repository.UserIndex
	GCS       *storage.Client
	GCSBucket string
	Logger    logrus.FieldLogger
	now       func() time.Time
}

func NewUserService(users repository.UserRepository, index repository.UserIndex, gcs *storage.Client, gcsBucket string, logger logrus.FieldLogger) *UserService {
	return &UserService{Users: users, Index: index, GCS: gcs, GCSBucket: gcsBucket, Logger: logger, now: time.Now}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if err := checkID(userID, "User not found"); err != nil {
		return nil, err
	}
	return s.Users.GetByID(ctx, userID)
}

// UpdateProfileInput carries the editable fields. A nil field is left as is;
// an empty Name is ignored too.
type UpdateProfileInput struct {
	Name     *string
	Bio      *string
	Location *string
	Website  *string
}

func (in UpdateProfileInput) validate() error {
	if in.Name != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*in.Name)); n != 0 && (n < 2 || n > 50) {
			return apperror.New(apperror.InvalidContent, "Name must be between 2 and 50 characters")
		}
	}
	if in.Bio != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Bio)) > 500 {
		return apperror.New(apperror.InvalidContent, "Bio cannot exceed 500 characters")
	}
	if in.Location != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Location)) > 100 {
		return apperror.New(apperror.InvalidContent, "Location cannot exceed 100 characters")
	}
	if in.Website != nil {
		w := strings.TrimSpace(*in.Website)
		if utf8.RuneCountInString(w) > 200 {
			return apperror.New(apperror.InvalidContent, "Website cannot exceed 200 characters")
		}
		if w != "" {
			if err := validate.Var(w, "url"); err != nil {
				return apperror.New(apperror.InvalidContent, "Website must be a valid URL")
			}
		}
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		u.Location = strings.TrimSpace(*in.Location)
	}
	if in.Website != nil {
		u.Website = strings.TrimSpace(*in.Website)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	indexProfile(ctx, s.Index, s.Logger, u)
	return u, nil
}

// SearchUsers matches name or bio case-insensitively. The index answers when
// configured and trusted; otherwise the store is queried directly.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]*entity.User, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return nil, apperror.New(apperror.InvalidContent, "Search query must be at least 2 characters long")
	}
	if s.Index != nil {
		users, err := s.Index.Search(ctx, q, MaxSearchResults)
		if err == nil {
			return users, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ErrIndexStale) {
			helpers.LogWarn(s.Logger, "user index search failed, using store", err, logrus.Fields{"query": q})
		}
	}
	return s.Users.Search(ctx, q, MaxSearchResults)
}

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// UploadAvatar stores the image in GCS and records its public URL as the
// user's profile picture.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, apperror.New(apperror.Unavailable, "Image storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !strings.HasPrefix(contentType, "image/") || !avatarExts[ext] {
		return nil, apperror.New(apperror.InvalidContent, "Profile picture must be a jpg, png, gif or webp image")
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	objectPath := helpers.AvatarObjectPath(userID, ext)
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, apperror.Wrap(apperror.Unavailable, "Image upload failed", err)
	}
	u.ProfilePicture = url
	u.UpdatedAt = s.now().UTC()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	indexProfile(ctx, s.Index, s.Logger, u)
	return u, nil
}
