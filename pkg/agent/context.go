package agent

import "context"

type userIDKey struct{}

// WithUserID returns a context carrying the conversation's user id. The
// engine sets it before every tool execution so shared sinks can scope their
// writes without per-user tool instances.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id set by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
