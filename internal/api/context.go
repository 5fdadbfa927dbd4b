// Shared context helpers for the API layer.
package api

import (
	"context"

	"github.com/econpulse/econpulse/internal/api/ctxkeys"
)

// WithClientID adds the authenticated client id to the request context.
// Uses ctxkeys.ClientID — shared key used by middleware and handlers alike.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ctxkeys.ClientID, clientID)
}

// GetClientID retrieves the authenticated client id from context.
func GetClientID(ctx context.Context) (string, error) {
	clientID, ok := ctx.Value(ctxkeys.ClientID).(string)
	if !ok || clientID == "" {
		return "", ErrMissingClientID
	}
	return clientID, nil
}
