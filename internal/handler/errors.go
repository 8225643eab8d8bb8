package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/routesync/internal/repository"
	"github.com/jengzang/routesync/internal/store"
	"github.com/jengzang/routesync/pkg/response"
)

// writeError maps store and provider errors onto HTTP responses
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, store.ErrRouteNotCached), errors.Is(err, repository.ErrRouteNotFound):
		response.NotFound(c, "Route not found")
	case errors.Is(err, store.ErrRenameFailure):
		response.BadGateway(c, "Rename was rejected; the previous name was restored")
	case errors.Is(err, store.ErrProviderFailure):
		response.BadGateway(c, "Route provider unavailable; showing cached routes")
	case errors.Is(err, store.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(c, "Service is shutting down")
	default:
		response.InternalError(c, err.Error())
	}
}
