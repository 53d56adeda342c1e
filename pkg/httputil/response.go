package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

// Response wraps all API responses.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is the caller-visible error body.
type Error struct {
	Message string              `json:"message"`
	Details []errors.FieldError `json:"details,omitempty"`
}

// Pagination is the metadata attached to list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"pages"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func RespondWithPagination(c *gin.Context, items interface{}, page, limit int, total int64) {
	pages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Items: items,
			Pagination: Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: pages,
			},
		},
	})
}

// RespondWithError maps the error taxonomy onto HTTP statuses. Unexpected
// errors are logged with full detail and answered with a generic message.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := statusFor(appErr.Kind)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request failed")
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func statusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindUnauthorized:
		return http.StatusUnauthorized
	case errors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
