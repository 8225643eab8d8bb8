package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/routesync/internal/app"
	"github.com/jengzang/routesync/pkg/response"
)

// MapHandler handles HTTP requests for the map surface
type MapHandler struct {
	app *app.App
}

// NewMapHandler creates a new map handler
func NewMapHandler(a *app.App) *MapHandler {
	return &MapHandler{app: a}
}

// GetState handles GET /api/v1/map
func (h *MapHandler) GetState(c *gin.Context) {
	st, err := h.app.Map.State(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, st)
}
