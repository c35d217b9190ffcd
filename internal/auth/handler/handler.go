package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auth-service/internal/apperr"
	"auth-service/internal/auth"
	"auth-service/internal/logger"
	"auth-service/internal/middleware"
	"auth-service/internal/user"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the auth API under /api/v1/auth.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	api := r.Group("/api/v1/auth")

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.DELETE("/logout", h.Logout)
	api.POST("/refresh-token", h.RefreshToken)
	api.PUT("/change-password", requireAuth, h.ChangePassword)
	api.POST("/forgot-password", h.ForgotPassword)
	api.GET("/get-user-list", requireAuth, h.GetUserList)
}

// userResponse is the external representation of a user. It never carries
// the password hash.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// [POST] /register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := req.Validate(); err != nil {
		validationError(c, err)
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "register successfully",
		"user":    toUserResponse(u),
	})
}

// [POST] /login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := req.Validate(); err != nil {
		validationError(c, err)
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "login successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// [DELETE] /logout
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logout successfully"})
}

// [POST] /refresh-token
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "refresh token successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// [PUT] /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	payload, ok := middleware.PayloadFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := req.Validate(); err != nil {
		validationError(c, err)
		return
	}

	err := h.service.ChangePassword(
		c.Request.Context(),
		payload.UserID,
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password change successful"})
}

// [POST] /forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := req.Validate(); err != nil {
		validationError(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "you should receive an email"})
}

// [GET] /get-user-list
func (h *Handler) GetUserList(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "get user list successfully",
		"users":   out,
	})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
}

func validationError(c *gin.Context, err error) {
	c.JSON(apperr.KindValidation.HTTPStatus(), gin.H{"message": err.Error()})
}

// writeError maps a workflow error to its HTTP status. Internal detail is
// logged, never rendered.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	}
	c.JSON(kind.HTTPStatus(), gin.H{"message": apperr.Message(err)})
}
