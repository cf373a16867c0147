package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

const (
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryHTTPStatus ErrorCategory = "http_status"
	ErrorCategoryParsing    ErrorCategory = "parsing"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	var se *StatusError
	if errors.As(err, &se) {
		return ErrorCategoryHTTPStatus
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "no such host") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") || strings.Contains(errStr, "malformed") {
		return ErrorCategoryParsing
	}

	return ErrorCategoryUnknown
}
