// Package errs provides the error taxonomy for termstore.
//
// It re-exports github.com/cockroachdb/errors so callers get stack traces and
// wrapping from one import, and defines the three fatal error classes the
// storage core raises:
//
//   - ErrInvariant: a structural invariant was violated (non-negative concept
//     nid, child added to a leaf node, ROLE_SOME over OR).
//   - ErrUnsupported: an operation was asked to handle a value outside its
//     closed set (unknown serialization target, unknown version type).
//   - ErrConfiguration: persisted metadata is malformed (missing annotations,
//     broken column numbering, default/type mismatch).
//
// Errors built with Invariantf, Unsupportedf and Configurationf are marked with
// the matching sentinel, so errors.Is classifies them through any amount of
// wrapping:
//
//	if errs.Is(err, errs.ErrConfiguration) {
//	    // schema metadata needs fixing
//	}
//
// Expected absence is never an error; it is modelled as a (value, bool) result.
package errs

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New           = crdb.New
	Newf          = crdb.Newf
	Wrap          = crdb.Wrap
	Wrapf         = crdb.Wrapf
	WithStack     = crdb.WithStack
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	WithHint      = crdb.WithHint
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
	Mark   = crdb.Mark
)

// Taxonomy sentinels. Use with Is.
var (
	ErrInvariant     = New("invariant violation")
	ErrUnsupported   = New("unsupported operation")
	ErrConfiguration = New("configuration error")
)

// Invariantf creates an error marked as an invariant violation.
func Invariantf(format string, args ...interface{}) error {
	return crdb.Mark(crdb.NewWithDepthf(1, format, args...), ErrInvariant)
}

// Unsupportedf creates an error marked as an unsupported operation.
// The message should carry the offending value.
func Unsupportedf(format string, args ...interface{}) error {
	return crdb.Mark(crdb.NewWithDepthf(1, format, args...), ErrUnsupported)
}

// Configurationf creates an error marked as a configuration error.
func Configurationf(format string, args ...interface{}) error {
	return crdb.Mark(crdb.NewWithDepthf(1, format, args...), ErrConfiguration)
}

// WrapConfiguration marks an existing error as a configuration error, adding
// context. Returns nil if err is nil.
func WrapConfiguration(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(crdb.WrapWithDepthf(1, err, format, args...), ErrConfiguration)
}

// IsInvariant reports whether err is or wraps an invariant violation.
func IsInvariant(err error) bool {
	return err != nil && Is(err, ErrInvariant)
}

// IsUnsupported reports whether err is or wraps an unsupported operation.
func IsUnsupported(err error) bool {
	return err != nil && Is(err, ErrUnsupported)
}

// IsConfiguration reports whether err is or wraps a configuration error.
func IsConfiguration(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}
