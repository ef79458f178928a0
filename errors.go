package ptrpatch

import (
	"github.com/eluv-io/errors-go"
)

// Reasons attached to every error returned by this package under the "reason"
// field. Use the Is* predicates rather than comparing them directly.
const (
	reasonInvalidPointer = "invalid pointer"
	reasonInvalidParent  = "invalid parent"
	reasonMissingParent  = "missing parent"
	reasonTargetNotFound = "target not found"
	reasonUnsupportedOp  = "unsupported operation"
)

// IsInvalidPointer reports whether err was caused by a malformed pointer string.
func IsInvalidPointer(err error) bool { return hasReason(err, reasonInvalidPointer) }

// IsInvalidParent reports whether err was caused by a path that descends into
// a value that cannot hold children, e.g. a scalar, or by a non-numeric token
// addressing an array.
func IsInvalidParent(err error) bool { return hasReason(err, reasonInvalidParent) }

// IsMissingParent reports whether err was caused by an intermediate key or
// index that does not exist.
func IsMissingParent(err error) bool { return hasReason(err, reasonMissingParent) }

// IsTargetNotFound reports whether err was caused by a terminal key or index
// that does not exist in an otherwise valid parent.
func IsTargetNotFound(err error) bool { return hasReason(err, reasonTargetNotFound) }

// IsUnsupportedOp reports whether err was caused by a patch operation other
// than "replace".
func IsUnsupportedOp(err error) bool { return hasReason(err, reasonUnsupportedOp) }

func hasReason(err error, reason string) bool {
	if err == nil {
		return false
	}
	r, ok := errors.GetField(err, "reason")
	return ok && r == reason
}
