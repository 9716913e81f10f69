package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/scoring"
	"github.com/abrezinsky/awardpicks/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeVotingClosed     = "VOTING_CLOSED"
	ErrCodeCategoryLocked   = "CATEGORY_LOCKED"
	ErrCodeDuplicateNominee = "DUPLICATE_NOMINEE"
	ErrCodeOwnerCannotLeave = "OWNER_CANNOT_LEAVE"
	ErrCodeRecomputeRunning = "RECOMPUTE_RUNNING"
	ErrCodeNoFeedURL        = "NO_FEED_URL"
)

// maxBodyBytes limits JSON request bodies
const maxBodyBytes = 1 << 20

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// serviceErrorCodes maps sentinel service errors to status and code
var serviceErrorCodes = map[*services.ServiceError]struct {
	status int
	code   string
}{
	services.ErrVotingClosed:     {http.StatusConflict, ErrCodeVotingClosed},
	services.ErrCategoryLocked:   {http.StatusConflict, ErrCodeCategoryLocked},
	services.ErrDuplicateNominee: {http.StatusBadRequest, ErrCodeDuplicateNominee},
	services.ErrOwnerCannotLeave: {http.StatusConflict, ErrCodeOwnerCannotLeave},
	services.ErrRecomputeRunning: {http.StatusConflict, ErrCodeRecomputeRunning},
	services.ErrNoFeedURL:        {http.StatusBadRequest, ErrCodeNoFeedURL},
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	slog.Error("Internal error", "error", err)
	return ErrInternalServer
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes a JSON request body into the target. Unknown fields
// are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return &APIError{Status: http.StatusRequestEntityTooLarge, Code: ErrCodeBadRequest, Message: "Request body too large"}
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// scopeParam reads the scope query parameter, defaulting to the global scope
func scopeParam(r *http.Request) string {
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	if scope == "" {
		return scoring.GlobalScope
	}
	return scope
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: appErr.Message}
		case errors.ErrForbidden:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		if m, ok := serviceErrorCodes[svcErr]; ok {
			return &APIError{Status: m.status, Code: m.code, Message: svcErr.Message}
		}
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: svcErr.Message}
	}
	var tableErr *services.InvalidTableError
	if stderrors.As(err, &tableErr) {
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: tableErr.Error()}
	}

	return InternalError(err)
}
