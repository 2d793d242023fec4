package middleware

import (
	"fmt"

	"commscore/internal/pkg/apperror"
)

// errMissingIdentity covers misordered middleware: a capability check that
// runs without a resolved identity is a server bug, not a caller error.
var errMissingIdentity = fmt.Errorf("%w: capability check before identity resolution", apperror.ErrInternal)
