package algebrizer

import "errors"

// Hard algebrization errors.  Unlike an Impossible conversion, these
// abort compilation of the query: the query is malformed or uses an
// unimplemented feature, and there is nothing to prune.
var (
	// ErrUnboundVariable reports a variable argument that either was
	// never declared as an input or has not been given a value yet.
	ErrUnboundVariable = errors.New("unbound variable")

	// ErrInvalidGroundConstant reports an argument shape that cannot
	// appear in this position, such as a nested vector.
	ErrInvalidGroundConstant = errors.New("invalid expression in ground constant")

	// ErrBigIntUnsupported reports a big-integer constant, which the
	// value model does not represent yet.
	ErrBigIntUnsupported = errors.New("big integer constants are not yet supported")
)
