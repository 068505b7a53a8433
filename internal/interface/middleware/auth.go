package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/interface/httperror"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// CredentialVerifier resolves a bearer token to the user it was issued for.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*entity.User, error)
}

// Auth requires an "Authorization: Bearer <token>" header. On success the
// resolved user is stored in the Gin context under CtxUserKey and its id under
// CtxUserIDKey.
func Auth(verifier CredentialVerifier, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, _ := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		token = strings.TrimSpace(token)
		bearer := strings.EqualFold(scheme, "Bearer")
		// "Bearer " with nothing after it carries no token at all.
		if scheme == "" || (bearer && token == "") {
			httperror.Write(c, logger, apperror.New(apperror.MissingCredential, "No token, authorization denied"), "")
			return
		}
		if !bearer || token == "" {
			httperror.Write(c, logger, apperror.New(apperror.MalformedCredential, "Invalid token format"), "")
			return
		}

		u, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			httperror.Write(c, logger, err, "Server error during authentication")
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
