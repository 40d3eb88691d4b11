package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var aerr *service.AuthorizationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not found"})
	case errors.As(err, &aerr):
		status := http.StatusForbidden
		if aerr.Anonymous {
			status = http.StatusUnauthorized
		}
		c.JSON(status, types.ErrorResponse{Error: aerr.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid email or password"})
	default:
		log.Error().Str("component", "api").Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}
}

// badRequest reports a malformed body or parameter.
func badRequest(c *gin.Context, field, msg string) {
	respondError(c, service.NewValidationError(field, msg))
}
