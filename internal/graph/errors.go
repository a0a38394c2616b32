// Package graph provides a read-only HTTP client for the Microsoft Graph API,
// scoped to user identity, OneDrive drives, drive items, and followed
// SharePoint sites.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, graph.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("graph: bad request")
	ErrUnauthorized = errors.New("graph: unauthorized")
	ErrForbidden    = errors.New("graph: forbidden")
	ErrNotFound     = errors.New("graph: not found")
	ErrThrottled    = errors.New("graph: throttled")
	ErrServerError  = errors.New("graph: server error")
	ErrUnexpected   = errors.New("graph: unexpected status")
)

// ErrInvalidArgument is returned before any network activity when a required
// identifier argument is empty.
var ErrInvalidArgument = errors.New("graph: invalid argument")

// AuthenticationError is returned when the TokenSource cannot produce a
// bearer token: the user declined consent, the device code expired, or a
// conditional-access policy blocked the sign-in. No request is sent.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("graph: authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned for any non-2xx response. Message holds the
// response body verbatim; Code is the Graph error code when the body is a
// standard Graph error envelope.
type UpstreamError struct {
	StatusCode int
	RequestID  string
	Code       string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *UpstreamError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("graph: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("graph: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ContractError is returned when a response decodes but does not have the
// shape the caller relies on, or does not decode at all.
type ContractError struct {
	Resource string // e.g. "user", "drive", "driveItem"
	Detail   string
	Err      error // underlying decode error, may be nil
}

func (e *ContractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph: unexpected %s response: %s: %v", e.Resource, e.Detail, e.Err)
	}

	return fmt.Sprintf("graph: unexpected %s response: %s", e.Resource, e.Detail)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// errorEnvelope is the standard Graph error body:
// {"error": {"code": "...", "message": "..."}}.
type errorEnvelope struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

// newUpstreamError builds an UpstreamError from a failed response's status,
// request ID, and raw body.
func newUpstreamError(status int, requestID string, body []byte) *UpstreamError {
	ue := &UpstreamError{
		StatusCode: status,
		RequestID:  requestID,
		Message:    string(body),
		Err:        classifyStatus(status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		ue.Code = env.Error.Code
	}

	return ue
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpected
	}
}
