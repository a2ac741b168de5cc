// Package autherr defines the error taxonomy shared by the identity and access
// control packages. Callers match with errors.Is against the exported sentinels;
// the transport layer maps errors to gRPC codes with GRPCStatus.
package autherr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinels for errors.Is matching. Wrapped errors created by the constructors
// below match the sentinel of their kind.
var (
	// ErrUnauthorized covers missing/malformed/expired credentials and a missing
	// second factor on a gated route. Safe to retry after re-authenticating.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the identity is valid but the permission level is insufficient.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCode means a wrong OTP/2FA code was presented; user-correctable.
	ErrInvalidCode = errors.New("invalid code")
	// ErrConflict means the operation is not valid in the current state
	// (e.g. enrollment already enabled) or a concurrent write was detected.
	ErrConflict = errors.New("conflict")
	// ErrInternal covers hashing/signing faults and malformed stored records.
	// Surfaced to callers without detail; the cause is for logs only.
	ErrInternal = errors.New("internal error")
)

// Unauthorized returns an unauthorized error with a caller-visible reason.
func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// Forbidden returns a forbidden error with a caller-visible reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// Conflict returns a conflict error with a caller-visible reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// Internal wraps cause as an internal error. The cause is preserved for logging
// but GRPCStatus strips it from the caller-visible message.
func Internal(cause error) error {
	return fmt.Errorf("%w: %w", ErrInternal, cause)
}

// GRPCStatus maps err to a gRPC status error. Internal errors (and unrecognized
// errors) become codes.Internal with a generic message so no cause detail leaks.
func GRPCStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrInvalidCode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
