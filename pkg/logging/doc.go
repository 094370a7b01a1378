// Package logging provides structured logging utilities for hostguard.
//
// # Overview
//
// This package wraps the standard library slog package with hostguard defaults
// and conventions for consistent logging across all components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("hostguard", "v1.0.0")
//	    defer slog.Info("application started")
//
//	    // Use slog as normal
//	    slog.Info("pass started", "modules", 2)
//	    slog.Debug("probe output", "command", "netstat")
//	    slog.Error("probe failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("hostguard", "v2.0.0", "debug")
//	logger.Info("monitor starting", "interval", "60s")
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("hostguard", "v1.0.0", "warn")
//
// Converting standard library logger:
//
//	stdLogger := logging.NewLogLogger(slog.LevelError)
//	stdLogger.Println("legacy log message")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug hostguard run
//	LOG_LEVEL=error hostguard snapshot
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "pass complete",
//	    "module": "hostguard",
//	    "version": "v1.0.0",
//	    "port": 8080
//	}
//
// Debug logs include source location:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "DEBUG",
//	    "source": {
//	        "function": "monitor.(*Service).step",
//	        "file": "service.go",
//	        "line": 45
//	    },
//	    "msg": "module step started",
//	    "module": "hostguard",
//	    "version": "v1.0.0"
//	}
//
// # Best Practices
//
// 1. Set default logger early in main():
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("myapp", version)
//	    defer slog.Info("application started")
//	    // ...
//	}
//
// 2. Include context in log messages:
//
//	slog.Info("differences detected",
//	    "target", "passwd",
//	    "count", 1,
//	    "cycle", cycleID,
//	)
//
// 3. Use appropriate log levels:
//
//	slog.Debug("probe output", "bytes", n)     // Development/troubleshooting
//	slog.Info("pass complete")                // Normal operations
//	slog.Warn("artifact unavailable")         // Potential issues
//	slog.Error("append snapshot failed")      // Errors requiring action
//
// 4. Log errors with context:
//
//	slog.Error("failed to persist snapshot",
//	    "error", err,
//	    "target", name,
//	    "operation", "append_snapshot",
//	)
//
// # Event Journal
//
// Journal is the line-oriented, timestamped append log that records daemon
// start, every pass start, and every non-empty difference set:
//
//	[2025-01-15 10:30:00] hostguard monitor started
//	[2025-01-15 10:30:00] pass started
//	[2025-01-15 10:31:00] passwd: ["/etc/passwd content changed"]
//
// # Integration
//
// This package is used by:
//   - pkg/cli - CLI command logging
//   - pkg/collector - Probe failures and degraded collection
//   - pkg/monitor - Pass and per-module step logging
//   - pkg/store - Storage diagnostics
//   - pkg/server - Status server request logging
//
// All components share consistent logging format and configuration.
package logging
