package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user-account/backend/internal/model"
)

// Ping godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} model.PingResponse
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root sends browsers to the API document.
func Root(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "/openapi.json")
}
