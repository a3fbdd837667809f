// Package errors provides error handling conventions for mcpsync.
//
// It re-exports the constructors and inspectors of
// [github.com/cockroachdb/errors] so call sites import a single package,
// defines the sentinel error kinds produced by the synchronization engine,
// and carries the ExitError type used at the CLI boundary.
//
// # Error Kinds
//
// The engine reports four kinds of failure. Each is a sentinel that typed
// carriers unwrap to, so callers can match with [Is]:
//
//   - [ErrMalformedEntry]: a raw server record neither normalizer recognizes
//   - [ErrSerialization]: a diff or preview could not be rendered
//   - [ErrApplyFailure]: a single selected name could not be applied
//   - [ErrUnsupportedMode]: an apply request rejected before any mutation
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
