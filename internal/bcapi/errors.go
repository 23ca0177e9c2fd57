// Package bcapi provides an HTTP client for the Business Communications API
// (brands, agents, and locations) together with the field-mask helpers that
// define its partial-update protocol.
package bcapi

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, bcapi.ErrNotFound) to check.
var (
	ErrInvalidArgument  = errors.New("bcapi: invalid argument")
	ErrUnauthenticated  = errors.New("bcapi: unauthenticated")
	ErrPermissionDenied = errors.New("bcapi: permission denied")
	ErrNotFound         = errors.New("bcapi: not found")
	ErrAlreadyExists    = errors.New("bcapi: already exists")
	ErrPrecondition     = errors.New("bcapi: failed precondition")
	ErrResourceExhaust  = errors.New("bcapi: resource exhausted")
	ErrServerError      = errors.New("bcapi: server error")
	ErrUnexpectedStatus = errors.New("bcapi: unexpected status")
)

// RemoteOperationError reports a create/get/patch/delete/list call that the
// service rejected or that never produced a response. Err holds the
// *googleapi.Error parsed from the response body when there was one, and the
// classified sentinel is reachable through Unwrap.
type RemoteOperationError struct {
	Op         string // "create", "get", "patch", "delete", "list"
	Resource   string // resource or parent name the call targeted
	StatusCode int    // 0 when the request never got a response
	Err        error
	sentinel   error
}

func (e *RemoteOperationError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("bcapi: %s %s: %v", e.Op, e.Resource, e.Err)
	}

	return fmt.Sprintf("bcapi: %s %s: HTTP %d: %v", e.Op, e.Resource, e.StatusCode, e.Err)
}

// Unwrap exposes both the underlying cause and the status sentinel.
func (e *RemoteOperationError) Unwrap() []error {
	if e.sentinel == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.sentinel}
}

// GoogleError returns the service's error envelope, if the failure carried one.
func (e *RemoteOperationError) GoogleError() (*googleapi.Error, bool) {
	var gerr *googleapi.Error
	if errors.As(e.Err, &gerr) {
		return gerr, true
	}

	return nil, false
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusPreconditionFailed:
		return ErrPrecondition
	case http.StatusTooManyRequests:
		return ErrResourceExhaust
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		if code >= http.StatusMultipleChoices {
			return ErrUnexpectedStatus
		}

		return nil
	}
}

// IsNotFound reports whether err is a remote not-found rejection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
