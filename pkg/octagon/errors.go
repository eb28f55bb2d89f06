package octagon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	ErrEmptyQuery     = errors.New("query is required and cannot be empty")
	ErrRequestTimeout = errors.New("request timeout")
)

// StatusError is returned when the API answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Detail)
}

// ParseError is returned when a successful response body is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse API response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError wraps transport failures other than timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("HTTP request error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies per-item failures for logs, traces and metrics.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindHTTPStatus ErrorKind = "http_status"
	KindParse      ErrorKind = "parse"
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindUnknown    ErrorKind = "unknown"
)

func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		statusErr  *StatusError
		parseErr   *ParseError
		networkErr *NetworkError
	)

	switch {
	case errors.Is(err, ErrEmptyQuery):
		return KindValidation
	case errors.Is(err, ErrRequestTimeout):
		return KindTimeout
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &networkErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// statusDetail prefers the "error" field of a JSON body and falls back to the raw text.
func statusDetail(body []byte) string {
	var decoded struct {
		Error any `json:"error"`
	}

	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Error == nil {
		return string(body)
	}

	switch v := decoded.Error.(type) {
	case string:
		if v == "" {
			return string(body)
		}

		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return string(body)
		}

		return string(encoded)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
