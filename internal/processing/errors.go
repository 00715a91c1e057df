package processing

import "errors"

// ErrInvalidTrigger rejects unrecognized trigger values on the process
// endpoint.
var ErrInvalidTrigger = errors.New("invalid processing trigger")
