package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"messenger/internal/repository"
	"messenger/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios y sesiones.
type UserHandler struct {
	logger  *zap.Logger
	users   repository.UserRepository
	userSvc *service.UserService
	gate    *service.SessionGate
}

func NewUserHandler(logger *zap.Logger, users repository.UserRepository, userSvc *service.UserService, gate *service.SessionGate) *UserHandler {
	return &UserHandler{
		logger:  logger,
		users:   users,
		userSvc: userSvc,
		gate:    gate,
	}
}

// Register maneja POST /api/user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=16"`
		Name     string `json:"name" binding:"required,max=32"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if _, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Name, req.Password, req.Email); err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Login maneja POST /api/user/login. Emite la sesion que el resto de los
// endpoints privilegiados y el gateway validan.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	session, user, err := h.userSvc.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false})
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": session.Token,
		"user_id":    user.ID,
		"name":       user.Name,
		"email":      user.Email,
	})
}

// IsSessionValid maneja POST /api/user/is_session_valid. Lo consume tambien
// el gateway cuando corre como proceso separado.
func (h *UserHandler) IsSessionValid(c *gin.Context) {
	var req struct {
		UserID    int64  `json:"user_id"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid session check request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	ok, err := h.gate.Validate(c.Request.Context(), req.UserID, req.SessionID)
	if err != nil {
		h.logger.Error("session check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// Logout maneja POST /api/user/logout. Borrar la sesion es idempotente; no
// desconecta streams ya suscritos en el gateway.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if err := h.gate.Invalidate(c.Request.Context(), req.SessionID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// FindByUsername maneja POST /api/user/find_by_username.
func (h *UserHandler) FindByUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Limit    int    `json:"limit"`
		Offset   int    `json:"offset"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid user search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultReadLimit
	}

	refs, err := h.users.SearchByUsername(c.Request.Context(), req.Username, req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("user search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": refs})
}

// FindByUserID maneja POST /api/user/find_by_user_id.
func (h *UserHandler) FindByUserID(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid user lookup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"result": nil})
		return
	}
	if err != nil {
		h.logger.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": []any{user.ID, user.Username, user.Name, user.Email}})
}

// ChatList maneja POST /api/user/chat_list.
func (h *UserHandler) ChatList(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat list request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultReadLimit
	}

	refs, err := h.users.ChatList(c.Request.Context(), req.UserID, req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("chat list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": refs})
}

// Update maneja PUT /api/user/update.
func (h *UserHandler) Update(c *gin.Context) {
	var req struct {
		UserID   int64  `json:"user_id" binding:"required"`
		Username string `json:"username" binding:"required,max=16"`
		Name     string `json:"name" binding:"required,max=32"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid user update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if err := h.userSvc.Update(c.Request.Context(), req.UserID, req.Username, req.Name, req.Password, req.Email); err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		h.logger.Error("user update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete maneja DELETE /api/user/delete.
func (h *UserHandler) Delete(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid user delete request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if err := h.users.Delete(c.Request.Context(), req.UserID); err != nil {
		h.logger.Error("user delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
