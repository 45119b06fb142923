package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/authorization"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooManyReqs  = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  validationErrs.Errors,
		}
	}

	var missingAttrs *identitydomain.MissingAttributesError
	if errors.As(err, &missingAttrs) {
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: missingAttrs.Error(),
		}
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	}

	var notAllowed *teamdomain.NotAllowedError
	if errors.As(err, &notAllowed) {
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: notAllowed.Error(),
		}
	}
	if errors.Is(err, authorization.ErrForbidden) {
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	}

	var illegalMembership *teamdomain.IllegalMembershipError
	if errors.As(err, &illegalMembership) {
		return http.StatusBadRequest, errorPayload{
			Type:    "illegal_membership",
			Message: illegalMembership.Error(),
		}
	}
	var illegalJoinRequest *teamdomain.IllegalJoinRequestError
	if errors.As(err, &illegalJoinRequest) {
		return http.StatusBadRequest, errorPayload{
			Type:    "illegal_join_request",
			Message: illegalJoinRequest.Error(),
		}
	}
	if errors.Is(err, teamdomain.ErrInvalidName) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	}

	var duplicateName *teamdomain.DuplicateTeamNameError
	if errors.As(err, &duplicateName) {
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: duplicateName.Error(),
		}
	}

	var notFound *teamdomain.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFound.Error(),
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	if errors.Is(err, ErrTooManyReqs) {
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "", ""
	}
}
