package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *application.UserService
	Logger logrus.FieldLogger
}

func NewUserHandler(svc *application.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
}

// Me GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	// re-read so the profile reflects the store, not the guard's snapshot
	fresh, err := h.Svc.GetProfile(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, h.Logger, err, "Server error getting user profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserView(fresh)})
}

// GetByID GET /api/user/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "Server error getting user profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserView(u)})
}

// UpdateMe PUT /api/user/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, application.UpdateProfileInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		fail(c, h.Logger, err, "Server error updating profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    toUserView(updated),
	})
}

// Search GET /api/user/search/:query
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Param("query"))
	if err != nil {
		fail(c, h.Logger, err, "Server error searching users")
		return
	}
	out := make([]searchUserView, 0, len(users))
	for _, u := range users {
		out = append(out, searchUserView{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Bio:            u.Bio,
			ProfilePicture: u.ProfilePicture,
			Location:       u.Location,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"users": out})
}

// UploadAvatar POST /api/user/me/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error(c, http.StatusBadRequest, "file must be at most 5MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "cannot read file")
		return
	}
	defer f.Close()

	updated, err := h.Svc.UploadAvatar(c.Request.Context(), u.ID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err, "Server error uploading profile picture")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Profile picture updated successfully",
		"user":    toUserView(updated),
	})
}
