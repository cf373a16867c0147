package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestCategorizeError verifies that CategorizeError maps errors to the correct ErrorCategory
// for metrics labeling, including wrapped status errors and message-based heuristics.
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryTimeout},
		{"wrapped deadline", fmt.Errorf("%w: request timeout: %w", ErrFetchFailure, context.DeadlineExceeded), ErrorCategoryTimeout},
		{"status error", fmt.Errorf("%w: %w", ErrFetchFailure, &StatusError{StatusCode: 503}), ErrorCategoryHTTPStatus},
		{"timeout in message", errors.New("i/o timeout"), ErrorCategoryTimeout},
		{"network in message", errors.New("connection refused"), ErrorCategoryNetwork},
		{"dns failure", errors.New("dial tcp: lookup www.jma.go.jp: no such host"), ErrorCategoryNetwork},
		{"parse in message", errors.New("parse response: invalid json"), ErrorCategoryParsing},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}
