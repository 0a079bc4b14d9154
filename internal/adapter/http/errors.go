package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrDuplicateTable),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrTableOccupied),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStatusChanged):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func validationDetails(err error) []ValidationError {
	var many domain.ValidationErrors
	if errors.As(err, &many) {
		out := make([]ValidationError, len(many))
		for i, v := range many {
			out[i] = ValidationError{Field: v.Field, Message: v.Message}
		}
		return out
	}
	var one domain.ValidationError
	if errors.As(err, &one) {
		return []ValidationError{{Field: one.Field, Message: one.Message}}
	}
	return nil
}

func respondError(c *gin.Context, log logger.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error(), Errors: validationDetails(err)}
	if status == http.StatusInternalServerError {
		log.Error("request_failed", "Internal error", c.GetString(ctxRequestID), nil, err)
		resp.Error = "Internal server error"
	}
	c.AbortWithStatusJSON(status, resp)
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// intParam reads a positive integer path parameter.
func intParam(c *gin.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		return 0, domain.ValidationError{Field: name, Message: name + " must be a positive integer"}
	}
	return n, nil
}
