// Package ctxutil moves request-scoped values from gin into context.Context.
package ctxutil

import (
	"context"

	"taskflow/api/response"
	"taskflow/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// WithRequestID returns the request context annotated with the request id, so
// services and the store log under the same id as the HTTP layer.
func WithRequestID(ctx *gin.Context) context.Context {
	return persistence.ContextWithRequestID(ctx.Request.Context(), response.GetRequestID(ctx))
}
