// Package i18n resolves message codes to localized, human readable strings.
// When a code has no translation the code itself is returned, so a missing
// entry degrades to a readable-enough response instead of an error.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Message codes used across the API
const (
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeInvalidJSONFormat   = "INVALID_JSON_FORMAT"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
	CodeBadCredentials      = "BAD_CREDENTIALS"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	CodeTokenMalformed      = "TOKEN_MALFORMED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeTokenUnsupported    = "TOKEN_UNSUPPORTED"
	CodeTokenNotFound       = "TOKEN_NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodeExpectationFailed   = "EXPECTATION_FAILED"
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		CodeInternalServerError: "Something went wrong, please try again later",
		CodeMethodNotAllowed:    "Request method is not supported",
		CodeInvalidJSONFormat:   "Request body is not valid JSON",
		CodeValidationError:     "Request validation failed",
		CodeBadRequest:          "Bad request",
		CodeBadCredentials:      "Invalid email or password",
		CodeTokenExpired:        "Token is expired",
		CodeRefreshTokenExpired: "Refresh token is expired",
		CodeTokenMalformed:      "Token is malformed",
		CodeTokenInvalid:        "Token is invalid",
		CodeTokenUnsupported:    "Token signing method is unsupported",
		CodeTokenNotFound:       "Token not found",
		CodeUnauthorized:        "Full authentication is required to access this resource",
		CodeAccessDenied:        "You do not have permission to access this resource",
		CodeNotFound:            "Requested resource not found",
		CodeExpectationFailed:   "Expectation failed",
	},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(catalog))
	tags = append(tags, language.English) // first tag is the fallback
	for tag := range catalog {
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	return language.NewMatcher(tags)
}()

// MessageSource resolves message codes for a fixed default locale while still
// honoring per-request Accept-Language headers.
type MessageSource struct {
	defaultTag language.Tag
}

func NewMessageSource(defaultLocale string) *MessageSource {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	return &MessageSource{defaultTag: tag}
}

// Message returns the translation of code for the default locale.
func (s *MessageSource) Message(code string, params ...any) string {
	return s.message(s.defaultTag, code, params...)
}

// MessageForRequest picks the best matching locale from an Accept-Language
// header value. An empty or unparseable header falls back to the default.
func (s *MessageSource) MessageForRequest(acceptLanguage string, code string, params ...any) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.message(s.defaultTag, code, params...)
	}

	tag, _, _ := matcher.Match(tags...)
	return s.message(tag, code, params...)
}

func (s *MessageSource) message(tag language.Tag, code string, params ...any) string {
	messages, ok := catalog[tag]
	if !ok {
		// Match returned an extension of a known base, walk up to it
		base, _ := tag.Base()
		messages, ok = catalog[language.Make(base.String())]
	}
	if !ok {
		messages = catalog[language.English]
	}

	msg, ok := messages[code]
	if !ok {
		return code
	}

	if len(params) > 0 {
		return fmt.Sprintf(msg, params...)
	}
	return msg
}
