package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

var validate = validator.New()

// AuthService issues bearer tokens and verifies them.
type AuthService struct {
	Users    repository.UserRepository
	Index    repository.UserIndex
	JWT      *helpers.JWTManager
	Notifier *Notifier
	Logger   logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, index repository.UserIndex, jwt *helpers.JWTManager, notifier *Notifier, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, Index: index, JWT: jwt, Notifier: notifier, Logger: logger, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Bio      string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func (in *RegisterInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Bio = strings.TrimSpace(in.Bio)
	if n := utf8.RuneCountInString(in.Name); n < 2 || n > 50 {
		return apperror.New(apperror.InvalidContent, "Name must be between 2 and 50 characters")
	}
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return apperror.New(apperror.InvalidContent, "Please enter a valid email")
	}
	if n := len(in.Password); n < 6 || n > 72 {
		return apperror.New(apperror.InvalidContent, "Password must be between 6 and 72 characters")
	}
	if utf8.RuneCountInString(in.Bio) > 500 {
		return apperror.New(apperror.InvalidContent, "Bio cannot exceed 500 characters")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "hash password", err)
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Bio:       in.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	usersRegistered.Add(1)
	indexProfile(ctx, s.Index, s.Logger, u)
	s.Notifier.Welcome(ctx, u)
	return s.issue(u)
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, apperror.New(apperror.InvalidCredentials, "Invalid credentials")
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperror.New(apperror.InvalidCredentials, "Invalid credentials")
	}
	return s.issue(u)
}

// IssueToken signs a token for an existing user.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (*AuthResult, error) {
	if err := checkID(userID, "User not found"); err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "sign token", err)
	}
	return &AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

// Verify resolves a bearer token to its user. It fails with ExpiredToken past
// the validity window, InvalidToken for any other signature or format problem
// and UnknownSubject when the user no longer exists.
func (s *AuthService) Verify(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, apperror.New(apperror.ExpiredToken, "Token expired")
		}
		return nil, apperror.New(apperror.InvalidToken, "Invalid token")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperror.New(apperror.UnknownSubject, "Token is not valid - user not found")
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, apperror.New(apperror.UnknownSubject, "Token is not valid - user not found")
		}
		return nil, err
	}
	return u, nil
}

// indexProfile refreshes the search index. The store stays authoritative, so a
// failure only costs search freshness.
func indexProfile(ctx context.Context, index repository.UserIndex, logger logrus.FieldLogger, u *entity.User) {
	if index == nil {
		return
	}
	if err := index.Index(ctx, u); err != nil {
		helpers.LogWarn(logger, "user index update failed", err, logrus.Fields{"user_id": u.ID})
	}
}
