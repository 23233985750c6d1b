package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/boxplanner/internal/export"
	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/piwi3910/boxplanner/internal/planner"
)

// APIError is an error with the HTTP status and machine-readable code it maps to.
type APIError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, statusCode int, errorCode string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

func badRequest(message string) *APIError {
	return NewAPIError(message, http.StatusBadRequest, "BAD_REQUEST")
}

// toAPIError maps planner and model errors to their HTTP form.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, model.ErrTierSum):
		return NewAPIError(err.Error(), http.StatusUnprocessableEntity, "TIER_SUM")
	case errors.Is(err, planner.ErrInvalidMode), errors.Is(err, model.ErrUnknownOverride):
		return NewAPIError(err.Error(), http.StatusBadRequest, "BAD_REQUEST")
	case errors.Is(err, planner.ErrNoPlan), errors.Is(err, planner.ErrNoCostReport), errors.Is(err, export.ErrEmptyPlan):
		return NewAPIError(err.Error(), http.StatusConflict, "NO_PLAN")
	case errors.Is(err, planner.ErrNotManualMode):
		return NewAPIError(err.Error(), http.StatusConflict, "NOT_MANUAL_MODE")
	case errors.Is(err, planner.ErrStaleResult):
		return NewAPIError(err.Error(), http.StatusConflict, "STALE_RESULT")
	case errors.Is(err, planner.ErrAnalysisInProgress):
		return NewAPIError(err.Error(), http.StatusConflict, "ANALYSIS_IN_PROGRESS")
	case errors.Is(err, planner.ErrNoAnalyzer):
		return NewAPIError(err.Error(), http.StatusServiceUnavailable, "NO_ANALYZER")
	case errors.Is(err, planner.ErrServiceFailed):
		return NewAPIError(err.Error(), http.StatusBadGateway, "ANALYSIS_FAILED")
	default:
		return NewAPIError(err.Error(), http.StatusInternalServerError, "INTERNAL")
	}
}

// handleError writes err as a JSON error response and logs it.
func (s *Server) handleError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	event := s.log.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = s.log.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", apiErr.StatusCode).
		Msg("request failed")
	c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message, "code": apiErr.ErrorCode})
}
