package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/auth"
	"github.com/dmarkhas/driftchat/internal/config"
)

// AuthHandlers provides HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	authService *auth.Service
	cfg         *config.Config
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance.
func NewAuthHandlers(authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cfg:         cfg,
		log:         logger,
	}
}

// SignupRequest represents the signup request body.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the profile update request body.
type UpdateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

// Signup handles user registration.
// POST /api/auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		status, body := statusFromError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("email", req.Email).Msg("signup failed")
		}
		c.JSON(status, body)
		return
	}

	h.setSessionCookie(c, token)
	h.log.Info().Str("user_id", user.ID).Msg("user signed up")
	c.JSON(http.StatusCreated, userToDTO(user))
}

// Login handles user login.
// POST /api/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, body := statusFromError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("email", req.Email).Msg("login failed")
		}
		c.JSON(status, body)
		return
	}

	h.setSessionCookie(c, token)
	h.log.Info().Str("user_id", user.ID).Msg("user logged in")
	c.JSON(http.StatusOK, userToDTO(user))
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	// MaxAge -1 serializes as Max-Age=0: the credential expires immediately.
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Check returns the authenticated user.
// GET /api/auth/check
func (h *AuthHandlers) Check(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		status, body := statusFromError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, userToDTO(user))
}

// UpdateProfile updates the profile picture.
// PUT /api/auth/update-profile
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.UpdateProfilePic(c.Request.Context(), userID, req.ProfilePic)
	if err != nil {
		status, body := statusFromError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("user_id", userID).Msg("profile update failed")
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, userToDTO(user))
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.JWTTTL.Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
}
