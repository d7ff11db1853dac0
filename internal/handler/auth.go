package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user-account/backend/internal/model"
	"github.com/user-account/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Profile and password"
// @Success 201 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/register-user [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Error: validationDetails(err)})
		return
	}

	err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Location: req.Location,
		About:    req.About,
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.MessageResponse{Message: "User created successfully."})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Error: validationDetails(err)})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message: "Login successful.",
		Data:    res.Response(),
	})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new access token
// @Description The refresh token is echoed back unchanged.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Error: validationDetails(err)})
		return
	}

	res, err := h.svc.RefreshAccessToken(c.Request.Context(), req.Token)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message: "Login successful.",
		Data:    res.Response(),
	})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AccountProfile
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	account := GetAuthAccount(c)
	if account == nil {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, model.ProfileOf(account))
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, errorBody("email", "Email already registered. Try logging in."))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
			Error: []map[string]string{{"body": "invalid input"}},
		})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, errorBody("error", "User not found. Try creating an account."))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody("error", "Invalid credentials. Try again..."))
	case errors.Is(err, service.ErrInvalidToken):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, errorBody("error", "Invalid Credentials"))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody("error", "Authorization failed. Log in again."))
	case errors.Is(err, service.ErrStorage):
		c.JSON(http.StatusInternalServerError, errorBody("Database Error", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("error", "server error"))
	}
}

func errorBody(key, msg string) model.ErrorResponse {
	return model.ErrorResponse{Error: map[string]string{key: msg}}
}
