package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas del messenger.
func NewRouter(
	logger *zap.Logger,
	gate SessionValidator,
	userH *UserHandler,
	msgH *MessageHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	sessionRequired := SessionAuthMiddleware(logger, gate)

	api := r.Group("/api")

	user := api.Group("/user")
	user.POST("/register", userH.Register)
	user.POST("/login", userH.Login)
	user.POST("/is_session_valid", userH.IsSessionValid)
	user.POST("/logout", sessionRequired, userH.Logout)
	user.POST("/find_by_username", sessionRequired, userH.FindByUsername)
	user.POST("/find_by_user_id", sessionRequired, userH.FindByUserID)
	user.POST("/chat_list", sessionRequired, userH.ChatList)
	user.PUT("/update", sessionRequired, userH.Update)
	user.DELETE("/delete", sessionRequired, userH.Delete)

	public := api.Group("/public", sessionRequired)
	public.POST("/send_message", msgH.SendPublic)
	public.POST("/read_messages", msgH.ReadPublic)

	private := api.Group("/private", sessionRequired)
	private.POST("/send_message", msgH.SendPrivate)
	private.POST("/read_messages", msgH.ReadPrivate)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
