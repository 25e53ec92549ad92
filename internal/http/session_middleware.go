package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const authUserIDKey = "auth_user_id"

// SessionValidator es lo que el middleware necesita del SessionGate.
type SessionValidator interface {
	Validate(ctx context.Context, userID int64, token string) (bool, error)
}

// SessionAuthMiddleware exige los headers Session-Id y User-Id y los valida
// contra el registro de sesiones activas. Envuelve cada ruta privilegiada;
// es el equivalente de un guard reutilizable, no de herencia de handlers.
func SessionAuthMiddleware(logger *zap.Logger, gate SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Session-Id")
		rawUserID := c.GetHeader("User-Id")
		if token == "" || rawUserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Session-Id and User-Id required"})
			c.Abort()
			return
		}

		userID, err := strconv.ParseInt(rawUserID, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Session-Id and User-Id required"})
			c.Abort()
			return
		}

		ok, err := gate.Validate(c.Request.Context(), userID, token)
		if err != nil {
			logger.Error("session validation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid session"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// AuthUserID obtiene el usuario autenticado puesto por el middleware.
func AuthUserID(c *gin.Context) (int64, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}
