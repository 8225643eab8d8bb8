package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/jengzang/routesync/internal/app"
	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/store"
	"github.com/jengzang/routesync/pkg/response"
)

// ListHandler handles HTTP requests for the list surface
type ListHandler struct {
	app *app.App
}

// NewListHandler creates a new list handler
func NewListHandler(a *app.App) *ListHandler {
	return &ListHandler{app: a}
}

// GetState handles GET /api/v1/list
func (h *ListHandler) GetState(c *gin.Context) {
	st, err := h.app.List.State(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, st)
}

// SetFilter handles PUT /api/v1/list/filter. Omitted dates keep the
// current window.
func (h *ListHandler) SetFilter(c *gin.Context) {
	var criteria models.FilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		response.BadRequest(c, "Invalid filter body")
		return
	}

	ctx := c.Request.Context()
	if criteria.StartDate.IsZero() && criteria.EndDate.IsZero() {
		current, err := h.app.List.State(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		criteria = criteria.WithWindow(current.Criteria.Window())
	}
	if err := criteria.Window().Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.app.List.SetFilter(ctx, criteria); err != nil {
		writeError(c, err)
		return
	}
	h.GetState(c)
}

type syncRequest struct {
	Interval string `json:"interval" binding:"required"`
}

// Sync handles POST /api/v1/list/sync
func (h *ListHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid sync body")
		return
	}
	iv, err := models.ParseSyncInterval(req.Interval)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	window, err := h.app.SetSyncInterval(c.Request.Context(), iv)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"interval": iv, "window": window})
}

// Refresh handles POST /api/v1/list/refresh
func (h *ListHandler) Refresh(c *gin.Context) {
	if err := h.app.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.GetState(c)
}

type activityStats struct {
	TotalDistanceMeters   float64    `json:"totalDistanceMeters"`
	TotalDistance         string     `json:"totalDistance"`
	RouteCount            int        `json:"routeCount"`
	LongestRouteID        *uuid.UUID `json:"longestRouteId,omitempty"`
	LongestRouteName      string     `json:"longestRouteName,omitempty"`
	LongestDistanceMeters float64    `json:"longestDistanceMeters"`
}

// GetStatistics handles GET /api/v1/list/stats
func (h *ListHandler) GetStatistics(c *gin.Context) {
	agg, err := h.app.List.Statistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	format := store.NewRowFormatter(language.English)
	out := make(map[models.ActivityType]activityStats, len(models.TrackedActivityTypes))
	for _, at := range models.TrackedActivityTypes {
		totals, _ := agg.For(at)
		s := activityStats{
			TotalDistanceMeters:   totals.TotalDistanceMeters,
			TotalDistance:         format.Distance(totals.TotalDistanceMeters),
			RouteCount:            totals.RouteCount,
			LongestDistanceMeters: totals.LongestDistanceMeters,
		}
		if r := totals.LongestRoute; r != nil {
			id := r.ID
			s.LongestRouteID = &id
			s.LongestRouteName = r.DisplayName()
		}
		out[at] = s
	}
	response.Success(c, out)
}

// SelectRoute handles POST /api/v1/list/routes/:id/select
func (h *ListHandler) SelectRoute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid route ID")
		return
	}

	h.app.SelectRoute(c.Request.Context(), id)
	h.mapState(c)
}

// ShowAll handles POST /api/v1/list/show-all
func (h *ListHandler) ShowAll(c *gin.Context) {
	h.app.ShowAll(c.Request.Context())
	h.mapState(c)
}

type renameRequest struct {
	Name string `json:"name"`
}

// Rename handles PUT /api/v1/list/routes/:id/name. An empty name clears it.
func (h *ListHandler) Rename(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid route ID")
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid rename body")
		return
	}
	if len(req.Name) > 200 {
		response.BadRequest(c, "Name too long")
		return
	}

	if err := h.app.Rename(c.Request.Context(), id, req.Name); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "name": req.Name, "renamedAt": time.Now().UTC()})
}

func (h *ListHandler) mapState(c *gin.Context) {
	st, err := h.app.Map.State(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, st)
}
