package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lifetrack-api/internal/application"
	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/interface/middleware"
	"lifetrack-api/pkg/response"
	"lifetrack-api/pkg/validation"
)

type UserHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(auth *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Logger: logger}
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
	Settings *struct {
		Theme         string `json:"theme" binding:"omitempty,oneof=light dark"`
		Notifications bool   `json:"notifications"`
		WeeklyReport  bool   `json:"weekly_report"`
	} `json:"settings"`
}

// UpdateProfile PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{Name: req.Name, Avatar: req.Avatar}
	if req.Settings != nil {
		theme := req.Settings.Theme
		if theme == "" {
			theme = "light"
		}
		in.Settings = &entity.Settings{
			Theme:         theme,
			Notifications: req.Settings.Notifications,
			WeeklyReport:  req.Settings.WeeklyReport,
		}
	}

	u, err := h.Auth.UpdateProfile(c.Request.Context(), id.UserID, in)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("profile update failed")
		response.Error(c, http.StatusInternalServerError, "Failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, sanitizeUser(u), "profile updated", nil)
}
