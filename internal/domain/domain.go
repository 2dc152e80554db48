package domain

import "errors"

// ErrNotFound covers every expected-absence case: unknown user, unknown
// project, missing artifact. Callers must treat it as "nothing here yet",
// not as a fault.
var ErrNotFound = errors.New("not found")

// ErrStateInconsistency marks an executor state value outside the known
// vocabulary. It is logged and never propagated as a request failure.
var ErrStateInconsistency = errors.New("unrecognized executor state")
