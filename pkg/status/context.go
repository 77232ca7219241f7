package status

import "context"

// contextKey is an unexported type for context keys to avoid collisions
type contextKey string

// statusChannelKey is the context key for the status channel
const statusChannelKey contextKey = "status-channel"

// WithChannel returns a copy of ctx carrying ch.
// The channel should be buffered so senders never wait on the handler.
func WithChannel(ctx context.Context, ch chan<- Update) context.Context {
	return context.WithValue(ctx, statusChannelKey, ch)
}

// getChannel returns the status channel stored in ctx, or nil
func getChannel(ctx context.Context) chan<- Update {
	if ctx == nil {
		return nil
	}

	ch, ok := ctx.Value(statusChannelKey).(chan<- Update)
	if !ok {
		return nil
	}

	return ch
}
