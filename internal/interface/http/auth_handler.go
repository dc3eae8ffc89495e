package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"lifetrack-api/config"
	"lifetrack-api/internal/application"
	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/infrastructure/oauth"
	"lifetrack-api/internal/interface/middleware"
	"lifetrack-api/pkg/helpers"
	"lifetrack-api/pkg/response"
	"lifetrack-api/pkg/validation"
)

const stateTTL = 10 * time.Minute

type AuthHandler struct {
	Auth    *application.AuthService
	Google  *oauth.GoogleStrategy
	RDB     *redis.Client
	Logger  *logrus.Logger
	Cfg     *config.Config
	Cookies *helpers.CookieManager
}

func NewAuthHandler(auth *application.AuthService, google *oauth.GoogleStrategy, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Auth:    auth,
		Google:  google,
		RDB:     rdb,
		Logger:  logger,
		Cfg:     cfg,
		Cookies: helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure),
	}
}

func keyOAuthState(s string) string { return "oauth:state:" + s }

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sanitizeUser builds the client-facing profile. The password hash never
// leaves the server.
func sanitizeUser(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID.Hex(),
		"name":       u.Name,
		"email":      u.Email,
		"avatar":     u.Avatar,
		"provider":   u.Provider,
		"settings":   gin.H{"theme": u.Settings.Theme, "notifications": u.Settings.Notifications, "weekly_report": u.Settings.WeeklyReport},
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error(c, http.StatusConflict, "An account with this email already exists", map[string]string{"email": "already registered"})
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error(c, http.StatusInternalServerError, "Registration failed due to a server error", h.errDetail(err))
		return
	}

	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, gin.H{
		"user":        sanitizeUser(u),
		"accessToken": pair.AccessToken,
	}, "Registration successful", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	_, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			// Uniform message: never reveal whether the email exists.
			response.Error(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error(c, http.StatusInternalServerError, "Login failed", h.errDetail(err))
		return
	}

	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"accessToken": pair.AccessToken}, "Login successful", nil)
}

// Logout POST /api/auth/logout clears the refresh cookie. Idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, nil, "Logged out", nil)
}

// Refresh POST /api/auth/refresh consumes the jid cookie and rotates the
// pair. The refresh token must verify against the refresh secret and its
// embedded tokenVersion must still match the user's.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookieName)
	if err != nil || refresh == "" {
		response.Error(c, http.StatusUnauthorized, "Missing refresh token", nil)
		return
	}
	pair, err := h.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"accessToken": pair.AccessToken}, "Token refreshed", nil)
}

// Me GET /api/auth/me returns the authenticated user's sanitized profile.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	u, err := h.Auth.GetProfile(c.Request.Context(), id.UserID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "User not found", nil)
		return
	}
	response.Success(c, http.StatusOK, sanitizeUser(u), "profile", nil)
}

// LogoutAll POST /api/auth/logout/all revokes every outstanding refresh
// token by bumping the user's tokenVersion, then clears the cookie.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	if err := h.Auth.LogoutAll(c.Request.Context(), id.UserID); err != nil {
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("logout all failed")
		response.Error(c, http.StatusInternalServerError, "Logout failed", h.errDetail(err))
		return
	}
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, nil, "All sessions revoked", nil)
}

// GoogleStart GET /api/auth/google stores a CSRF state token and redirects
// to the provider's consent screen.
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	state, err := oauth.NewState()
	if err != nil {
		h.Logger.WithError(err).Error("state generation failed")
		h.failRedirect(c, "authentication_failed")
		return
	}
	if err := h.RDB.Set(c.Request.Context(), keyOAuthState(state), "1", stateTTL).Err(); err != nil {
		h.Logger.WithError(err).Error("state store failed")
		h.failRedirect(c, "authentication_failed")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

// GoogleCallback GET /api/auth/google/callback finishes the federated flow.
// Every failure resolves to a redirect with an opaque error code; the client
// is mid-navigation and must never receive raw JSON or internal error text.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if c.Query("error") != "" {
		h.failRedirect(c, "access_denied")
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		h.failRedirect(c, "invalid_request")
		return
	}
	// One-shot state check.
	if _, err := h.RDB.GetDel(c.Request.Context(), keyOAuthState(state)).Result(); err != nil {
		h.failRedirect(c, "invalid_state")
		return
	}

	profile, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Logger.WithError(err).Warn("oauth exchange failed")
		h.failRedirect(c, "authentication_failed")
		return
	}

	u, err := h.Auth.ResolveFederated(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, application.ErrProviderConflict) {
			h.failRedirect(c, "provider_conflict")
			return
		}
		h.Logger.WithError(err).Error("federated resolution failed")
		h.failRedirect(c, "authentication_failed")
		return
	}

	pair, err := h.Auth.IssueTokens(u)
	if err != nil {
		h.failRedirect(c, "authentication_failed")
		return
	}

	// The flow terminates in a cross-origin redirect, so the tokens travel
	// in the URL rather than a cookie.
	q := url.Values{}
	q.Set("token", pair.AccessToken)
	q.Set("refreshToken", pair.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, h.Cfg.ClientOrigin+"/auth/callback?"+q.Encode())
}

func (h *AuthHandler) failRedirect(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.Cfg.ClientOrigin+"/login?error="+url.QueryEscape(code))
}

// errDetail exposes internal error text only outside production.
func (h *AuthHandler) errDetail(err error) interface{} {
	if h.Cfg.IsProduction() || err == nil {
		return nil
	}
	return err.Error()
}
