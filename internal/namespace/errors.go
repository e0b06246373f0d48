package namespace

import "errors"

// ErrEmptyPrefix is returned by Bind when either the target or source
// prefix is empty.
var ErrEmptyPrefix = errors.New("namespace: empty bind prefix")
