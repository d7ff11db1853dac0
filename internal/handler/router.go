package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-account/backend/internal/service"
)

// NewRouter wires every public route onto a fresh gin engine.
func NewRouter(authService *service.AuthService, logger zerolog.Logger, allowedOrigins []string) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), CORSMiddleware(allowedOrigins))

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/openapi.json", OpenAPIDoc)

	authHandler := NewAuthHandler(authService)
	v1 := router.Group("/api/v1")
	v1.POST("/register-user", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh-token", authHandler.RefreshToken)
	v1.GET("/me", AuthMiddleware(authService), authHandler.Me)

	return router
}
