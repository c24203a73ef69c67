package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies a generation failure
type ErrorKind string

// Generation failure kinds
const (
	KindTimeout      ErrorKind = "timeout"
	KindRateLimited  ErrorKind = "rate_limited"
	KindAuthFailure  ErrorKind = "auth_failure"
	KindServiceError ErrorKind = "service_error"
)

// Retryable reports whether the same prompt may be sent again after a backoff.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindRateLimited
}

// GenerationError is returned by generators for every failed call.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Classify maps a provider or context error onto a GenerationError. Errors that are already
// classified pass through unchanged.
//   - deadline exceeded (context, gRPC, HTTP 408/504) is a Timeout
//   - gRPC ResourceExhausted/Unavailable and HTTP 429/503 are RateLimited
//   - gRPC Unauthenticated/PermissionDenied and HTTP 401/403 are AuthFailure
//   - anything else, cancellation included, is a ServiceError
func Classify(err error, message string) *GenerationError {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return &GenerationError{Kind: classifyKind(err), Message: message, Cause: err}
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return KindTimeout
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return KindRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuthFailure
		default:
			return KindServiceError
		}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			return KindTimeout
		case codes.ResourceExhausted, codes.Unavailable:
			return KindRateLimited
		case codes.Unauthenticated, codes.PermissionDenied:
			return KindAuthFailure
		}
	}
	return KindServiceError
}
