// Package errors provides structured error types for better observability
// and programmatic error handling across hostguard.
//
// Collectors report unavailable artifacts with ErrCodeUnavailable or
// ErrCodeTimeout, the store reports ErrCodeStorage, and configuration
// loading reports ErrCodeInvalidConfig.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "command probe timed out",
//	    ctx.Err(),
//	    map[string]any{
//	        "command": "netstat",
//	        "timeout": timeout.String(),
//	    },
//	)
package errors
