// API error definitions.
package api

import "errors"

// ErrMissingClientID is returned when no authenticated client id is present
// in the request context.
var ErrMissingClientID = errors.New("missing client_id in context")
