package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/interface/httperror"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/pkg/response"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

func fail(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	httperror.Write(c, logger, err, fallback)
}

// badRequest answers a binding or validation failure with 400.
func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, validation.Message(err))
}

// currentUser returns the user attached by middleware.Auth. A route wired
// without the guard is a programming error and answers 401.
func currentUser(c *gin.Context) (*entity.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperror.Write(c, nil, apperror.New(apperror.MissingCredential, "No token, authorization denied"), "")
	}
	return u, ok
}
