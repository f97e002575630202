package tensor

import "errors"

// ErrArgument reports a shape-contract violation: wrong rank, mismatched sample
// counts, a non-empty dimension declared for removal or an inverted slice range.
var ErrArgument = errors.New("invalid argument")
