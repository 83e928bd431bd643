package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/i18n"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/logger"
)

// ErrorBody is the uniform error payload of the whole API
type ErrorBody struct {
	Message string            `json:"message"`
	Items   map[string]string `json:"items,omitempty"`
}

// Mapper is the single place that turns failures into HTTP responses.
// No handler writes its own error body: everything funnels through here, gets
// logged and leaves with a localized message.
type Mapper struct {
	messages *i18n.MessageSource
	logger   logger.Logger
}

func NewMapper(messages *i18n.MessageSource, l logger.Logger) *Mapper {
	return &Mapper{messages: messages, logger: l}
}

// mapping is the ordered lookup table: first match wins, the catch-all 500 is
// evaluated last and never exposes the raw error text.
var mapping = []struct {
	target error
	status int
	code   string
}{
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, i18n.CodeTokenExpired},
	{apperrors.ErrRefreshTokenExpired, http.StatusUnauthorized, i18n.CodeRefreshTokenExpired},
	{apperrors.ErrBadCredentials, http.StatusUnauthorized, i18n.CodeBadCredentials},
	{apperrors.ErrMissingAuthentication, http.StatusUnauthorized, i18n.CodeUnauthorized},
	{apperrors.ErrAccessDenied, http.StatusForbidden, i18n.CodeAccessDenied},

	{apperrors.ErrTokenMalformed, http.StatusBadRequest, i18n.CodeTokenMalformed},
	{apperrors.ErrTokenUnsupported, http.StatusBadRequest, i18n.CodeTokenUnsupported},
	{apperrors.ErrTokenInvalid, http.StatusBadRequest, i18n.CodeTokenInvalid},
	{apperrors.ErrTokenIllegal, http.StatusBadRequest, i18n.CodeBadRequest},
	{apperrors.ErrIllegalArgument, http.StatusBadRequest, i18n.CodeBadRequest},
	{apperrors.ErrCipher, http.StatusBadRequest, i18n.CodeBadRequest},
	{apperrors.ErrNotRemovable, http.StatusBadRequest, i18n.CodeBadRequest},

	{apperrors.ErrUserNotFound, http.StatusNotFound, i18n.CodeNotFound},
	{apperrors.ErrRoleNotFound, http.StatusNotFound, i18n.CodeNotFound},
	{apperrors.ErrPermissionNotFound, http.StatusNotFound, i18n.CodeNotFound},
	{apperrors.ErrTokenNotFound, http.StatusNotFound, i18n.CodeTokenNotFound},

	{apperrors.ErrExpectation, http.StatusExpectationFailed, i18n.CodeExpectationFailed},
}

// conflicts get their own pass so "already exists" reads as a conflict, not a
// generic bad request
var conflictErrors = []error{
	apperrors.ErrUserAlreadyExists,
	apperrors.ErrRoleAlreadyExists,
	apperrors.ErrPermissionAlreadyExists,
}

// Error classifies err and writes the mapped status with a localized message.
func (m *Mapper) Error(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("request failed", "method", r.Method, "uri", r.RequestURI, "error", err.Error())

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		m.writeValidationErrors(w, r, errs)
		return
	}

	for _, entry := range mapping {
		if errors.Is(err, entry.target) {
			m.write(w, r, entry.status, entry.code)
			return
		}
	}

	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			m.writeMessage(w, http.StatusConflict, target.Error())
			return
		}
	}

	m.write(w, r, http.StatusInternalServerError, i18n.CodeInternalServerError)
}

// AuthError is the authentication entry point: any failure on the bearer-token
// path leaves as 401, with the message picked in the fixed priority order
// refresh-expired, expired, unsupported, invalid, malformed, illegal,
// not found, then the generic one.
func (m *Mapper) AuthError(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("could not authenticate request", "method", r.Method, "uri", r.RequestURI, "error", err.Error())

	code := i18n.CodeUnauthorized
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenExpired):
		code = i18n.CodeRefreshTokenExpired
	case errors.Is(err, apperrors.ErrTokenExpired):
		code = i18n.CodeTokenExpired
	case errors.Is(err, apperrors.ErrTokenUnsupported):
		code = i18n.CodeTokenUnsupported
	case errors.Is(err, apperrors.ErrTokenInvalid):
		code = i18n.CodeTokenInvalid
	case errors.Is(err, apperrors.ErrTokenMalformed):
		code = i18n.CodeTokenMalformed
	case errors.Is(err, apperrors.ErrTokenIllegal):
		code = i18n.CodeBadRequest
	case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		code = i18n.CodeTokenNotFound
	}

	m.write(w, r, http.StatusUnauthorized, code)
}

// DecodeError writes 400 for unparseable request bodies.
func (m *Mapper) DecodeError(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("request body decode failed", "method", r.Method, "uri", r.RequestURI, "error", err.Error())

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		m.writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field))
		return
	}

	m.write(w, r, http.StatusBadRequest, i18n.CodeInvalidJSONFormat)
}

// ValidationErrors writes 422 with the aggregated field to message mapping.
func (m *Mapper) ValidationErrors(w http.ResponseWriter, r *http.Request, errs validator.ValidationErrors) {
	m.logger.Error("request validation failed", "method", r.Method, "uri", r.RequestURI, "error", errs.Error())
	m.writeValidationErrors(w, r, errs)
}

// MethodNotAllowed writes 405 with the localized message.
func (m *Mapper) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	m.logger.Error("method not allowed", "method", r.Method, "uri", r.RequestURI)
	m.write(w, r, http.StatusMethodNotAllowed, i18n.CodeMethodNotAllowed)
}

// NotFound writes 404 with the localized message.
func (m *Mapper) NotFound(w http.ResponseWriter, r *http.Request) {
	m.write(w, r, http.StatusNotFound, i18n.CodeNotFound)
}

func (m *Mapper) writeValidationErrors(w http.ResponseWriter, r *http.Request, errs validator.ValidationErrors) {
	items := make(map[string]string, len(errs))

	// User friendly messages based on the failed validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "email":
			message = "Must be a valid email address"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		items[fieldError.Field()] = message
	}

	body := ErrorBody{
		Message: m.messages.MessageForRequest(r.Header.Get("Accept-Language"), i18n.CodeValidationError),
		Items:   items,
	}
	JSONWithStatus(w, body, http.StatusUnprocessableEntity)
}

func (m *Mapper) write(w http.ResponseWriter, r *http.Request, status int, code string) {
	message := m.messages.MessageForRequest(r.Header.Get("Accept-Language"), code)
	m.writeMessage(w, status, message)
}

func (m *Mapper) writeMessage(w http.ResponseWriter, status int, message string) {
	JSONWithStatus(w, ErrorBody{Message: message}, status)
}
