package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/agenticauto/autobuilder/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates a missing or rejected token
	ErrTypeAuth
	// ErrTypeHTTP indicates a non-2xx response
	ErrTypeHTTP
	// ErrTypeParse indicates a response body that could not be decoded
	ErrTypeParse
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the base URL
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeCanceled indicates the caller canceled the request
	ErrTypeCanceled
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Client method
type Error struct {
	Type       ErrorType
	Message    string // what the client was doing
	StatusCode int    // HTTP status, 0 when no response arrived
	Detail     string // backend "detail" text, if any
	Err        error  // underlying error
	RequestID  string // X-Request-ID sent with the request
	Host       string // backend host, for hints
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport failure onto an *Error
func ClassifyNetworkError(err error, host string) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrTypeCanceled, Message: "Request canceled", Err: err, Host: host}
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Type: ErrTypeTimeout, Message: "Request timed out", Err: err, Host: host}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
			Host:    host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &Error{Type: ErrTypeConnectionRefused, Message: "Backend refused connection", Err: err, Host: host}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &Error{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err, Host: host}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *Error {
	classified := ClassifyNetworkError(err, "")
	if classified == nil {
		return &Error{Type: ErrTypeNetwork, Message: message}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an error for a non-2xx response. 401 and 403
// responses become authentication errors.
func NewHTTPError(statusCode int, message, detail string) *Error {
	t := ErrTypeHTTP
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		t = ErrTypeAuth
	}
	return &Error{Type: t, Message: message, StatusCode: statusCode, Detail: detail}
}

// NewParseError creates a response decoding error
func NewParseError(message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Message: message, Err: err}
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsNetworkError reports whether err happened before any response arrived
func IsNetworkError(err error) bool {
	if e, ok := asError(err); ok {
		switch e.Type {
		case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
			return true
		}
	}
	return false
}

// IsAuthError reports whether the backend rejected the token
func IsAuthError(err error) bool {
	e, ok := asError(err)
	return ok && e.Type == ErrTypeAuth
}

// IsHTTPError reports whether the backend answered with a non-2xx status
func IsHTTPError(err error) bool {
	e, ok := asError(err)
	return ok && (e.Type == ErrTypeHTTP || e.Type == ErrTypeAuth)
}

// IsNotFound reports a 404 response
func IsNotFound(err error) bool {
	e, ok := asError(err)
	return ok && e.StatusCode == http.StatusNotFound
}

// IsCanceled reports whether the caller canceled the request
func IsCanceled(err error) bool {
	e, ok := asError(err)
	return ok && e.Type == ErrTypeCanceled
}

// Message returns the text to show the user for err: the backend detail
// when one was sent, else a short description.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Detail != "" {
		return e.Detail
	}
	return GetShortErrorMessage(err)
}

// MessageOr returns the backend detail for err, or fallback when the
// backend sent none.
func MessageOr(err error, fallback string) string {
	if e, ok := asError(err); ok && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	e, ok := asError(err)
	if !ok {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeTimeout:
		return "Backend not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Backend refused connection - is it running?"
	case ErrTypeDNS:
		return "Cannot resolve backend hostname"
	case ErrTypeAuth:
		return "Not authorised - try logging in again"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	case ErrTypeParse:
		return "Unexpected response from backend"
	case ErrTypeCanceled:
		return "Canceled"
	default:
		return e.Message
	}
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	e, ok := asError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The backend did not respond in time.",
			"Troubleshooting:",
			"  • Hosted backends may take up to a minute to wake from sleep",
			"  • Try again, or raise --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"Nothing is listening at " + e.Host + ".",
			"Troubleshooting:",
			"  • Check --api-url or AUTOBUILDER_API_URL",
			"  • Start a local backend with: autobuilder sandbox, then use --api-url " + urls.LocalBackend,
			"  • Find backends on your network with: autobuilder discover",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the backend hostname.",
			"Troubleshooting:",
			"  • Check the spelling of --api-url",
			"  • Check your network DNS settings",
		}, "\n")

	case ErrTypeAuth:
		return strings.Join([]string{
			"The backend rejected your credentials.",
			"Troubleshooting:",
			"  • Run: autobuilder login",
			"  • Tokens are only sent to the backend that issued them",
		}, "\n")

	case ErrTypeHTTP:
		if e.StatusCode >= 500 {
			return fmt.Sprintf("The backend failed (HTTP %d). Request ID %s may help its operators.", e.StatusCode, e.RequestID)
		}
		return fmt.Sprintf("The backend rejected the request (HTTP %d). Check the values you entered.", e.StatusCode)

	case ErrTypeParse:
		return "The backend answered with something other than the expected JSON. Check that --api-url points at the automation API."

	case ErrTypeNetwork:
		return "Network communication failed. Check your connection and try again."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// parseDetail extracts FastAPI's "detail" from an error body. String
// details are returned as-is; validation lists are rendered as
// "field: message" joined by "; ". Non-JSON bodies are returned trimmed
// when short.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	if len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if len(item.Loc) > 0 {
				parts = append(parts, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return string(envelope.Detail)
}
