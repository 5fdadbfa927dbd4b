// Error taxonomy for the ai package.
//
// Two channels are deliberately kept apart: availability failures are
// absorbed into a false Available() verdict and recovered by the registry's
// fallback path, while failures on a call that was already admitted
// (non-2xx after a successful probe) surface as *UpstreamError and are
// propagated to the caller untouched. Callers rely on that distinction, so
// the two must never be unified into one error channel.
package ai

import "fmt"

// UpstreamError is a non-2xx response from a remote provider on a
// generate/embed call. Body carries the upstream response text verbatim.
type UpstreamError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai: provider %s: %s: status %d: %s",
		e.Provider, e.Endpoint, e.StatusCode, e.Body)
}

// UnknownProviderError is returned by Registry.SetActive for an id that was
// never registered. The registry state is left untouched.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("ai: unknown provider %q", e.ID)
}
