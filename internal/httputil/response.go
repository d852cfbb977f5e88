// Package httputil writes JSON error responses for the local proxy.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vau/internal/errors"
)

// ErrorResponse is the JSON body of every proxy-generated error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type errorMapping struct {
	status  int
	message string
}

// An empty message means the error text itself is safe to show.
var errorMappings = map[string]errorMapping{
	apperrors.CodeSecureChannel: {http.StatusBadGateway, "The VAU secure channel failed"},
	apperrors.CodeNotFound:      {http.StatusNotFound, "The requested resource was not found"},
	apperrors.CodeInvalidInput:  {http.StatusUnprocessableEntity, ""},
	apperrors.CodeUnauthorized:  {http.StatusUnauthorized, "A bearer token is required"},
	apperrors.CodeInternal:      {http.StatusInternalServerError, "An internal error occurred"},
}

// StatusCode returns the HTTP status the proxy answers with for err.
func StatusCode(err error) int {
	return errorMappings[apperrors.Code(err)].status
}

// HandleErrorGin logs err and writes its mapped status and code.
// Secure channel details never leave the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	code := apperrors.Code(err)
	mapping := errorMappings[code]
	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "vau proxy request failed",
			slog.Int("status_code", mapping.status),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, ErrorResponse{Error: code, Message: message})
}

// HandleBadRequestGin answers 400 for requests that could not be read.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad proxy request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}
