package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/storage"
	"github.com/dgtlunion/konspekt/webhook"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrValidation), errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, webhook.ErrBadSignature):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
