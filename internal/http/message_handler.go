package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"messenger/internal/service"
)

const defaultReadLimit = 100

// MessageHandler expone el camino de escritura y el de lectura de historial.
type MessageHandler struct {
	logger    *zap.Logger
	messenger *service.MessengerService
}

func NewMessageHandler(logger *zap.Logger, messenger *service.MessengerService) *MessageHandler {
	return &MessageHandler{logger: logger, messenger: messenger}
}

// SendPublic maneja POST /api/public/send_message.
func (h *MessageHandler) SendPublic(c *gin.Context) {
	var req struct {
		UserID   int64  `json:"user_id" binding:"required"`
		Message  string `json:"message" binding:"required"`
		Name     string `json:"name"`
		RoomName string `json:"room_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid public send request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if err := h.messenger.SendPublic(c.Request.Context(), req.UserID, req.Message, req.RoomName, req.Name); err != nil {
		h.logger.Error("public send failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReadPublic maneja POST /api/public/read_messages. Timestamp vacio lee desde
// el principio.
func (h *MessageHandler) ReadPublic(c *gin.Context) {
	var req struct {
		Limit     int    `json:"limit"`
		Offset    int    `json:"offset"`
		Timestamp string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid public read request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultReadLimit
	}

	views, err := h.messenger.ReadPublic(c.Request.Context(), req.Timestamp, req.Limit, req.Offset)
	if errors.Is(err, service.ErrInvalidCursor) {
		h.logger.Warn("invalid public read cursor", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if err != nil {
		h.logger.Error("public read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": views})
}

// SendPrivate maneja POST /api/private/send_message.
func (h *MessageHandler) SendPrivate(c *gin.Context) {
	var req struct {
		SenderID   int64  `json:"sender_id" binding:"required"`
		ReceiverID int64  `json:"receiver_id" binding:"required"`
		Message    string `json:"message" binding:"required"`
		Name       string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid private send request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if err := h.messenger.SendPrivate(c.Request.Context(), req.SenderID, req.ReceiverID, req.Message, req.Name); err != nil {
		h.logger.Error("private send failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReadPrivate maneja POST /api/private/read_messages. El par es sin orden:
// (a, b) y (b, a) devuelven la misma conversacion.
func (h *MessageHandler) ReadPrivate(c *gin.Context) {
	var req struct {
		SenderID   int64  `json:"sender_id" binding:"required"`
		ReceiverID int64  `json:"receiver_id" binding:"required"`
		Limit      int    `json:"limit"`
		Offset     int    `json:"offset"`
		Timestamp  string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid private read request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultReadLimit
	}

	views, err := h.messenger.ReadPrivate(c.Request.Context(), req.SenderID, req.ReceiverID, req.Timestamp, req.Limit, req.Offset)
	if errors.Is(err, service.ErrInvalidCursor) {
		h.logger.Warn("invalid private read cursor", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if err != nil {
		h.logger.Error("private read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": views})
}
