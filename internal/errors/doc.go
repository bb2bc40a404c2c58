// Package errors provides error handling conventions for the appcfg CLI.
//
// Wrapping helpers delegate to github.com/cockroachdb/errors so every error
// created inside the module carries a stack trace. The package also defines
// sentinel errors for common failure conditions and an ExitError type for
// CLI exit code handling.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, appcfgerrors.ErrKeyNotFound) {
//	    // handle missing key
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := appcfgerrors.NewUserError(appcfgerrors.ErrInvalidConfig, "Check your config file")
//	var exitErr *appcfgerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
