package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dorkyWolfie/qr-generator/internal/lockout"
	"github.com/dorkyWolfie/qr-generator/internal/response"
	"github.com/dorkyWolfie/qr-generator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	service *service.AuthService
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// userID extracts the authenticated user from the context set by the JWT
// middleware.
func userID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid session"})
		return uuid.Nil, false
	}
	return id, true
}

type UserRegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
//
//	@Summary		Register a user
//	@Description	Create a new account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		UserRegisterRequest				true	"Registration parameters"
//	@Success		201		{object}	response.UserRegisterResponse	"Account created"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Failure		409		{object}	response.ErrorResponse			"User already exists"
//	@Failure		500		{object}	response.ErrorResponse			"Server error"
//	@Router			/api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	user, err := h.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusConflict, response.ErrorResponse{Error: "User already exists"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, response.UserRegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify credentials and issue a token pair
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		LoginRequest			true	"Login parameters"
//	@Success		200		{object}	response.TokenResponse	"Token pair"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Invalid credentials"
//	@Failure		423		{object}	response.LockedResponse	"Account temporarily locked"
//	@Failure		500		{object}	response.ErrorResponse	"Server error"
//	@Router			/api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	access, refresh, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		var locked *lockout.LockedError
		switch {
		case errors.As(err, &locked):
			retry := int64(time.Until(locked.Until).Seconds())
			if retry < 0 {
				retry = 0
			}
			c.JSON(http.StatusLocked, response.LockedResponse{
				Error:             "Account temporarily locked due to too many failed login attempts",
				RetryAfterSeconds: retry,
			})
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, lockout.ErrMismatch):
			// One message for both: an attacker learns nothing about which
			// part was wrong.
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchange a refresh token for a new token pair
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		RefreshRequest			true	"Refresh parameters"
//	@Success		200		{object}	response.TokenResponse	"Token pair"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Invalid token"
//	@Failure		500		{object}	response.ErrorResponse	"Server error"
//	@Router			/api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	access, refresh, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid token"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Profile godoc
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.UserResponse	"Profile"
//	@Failure		401	{object}	response.ErrorResponse	"Unauthorized"
//	@Router			/api/profile/me [get]
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.service.Profile(id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "User not found"})
		return
	}

	c.JSON(http.StatusOK, response.UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}
