package tofu

import "context"

// signalSafeContext returns ctx unchanged. On Linux terraform-exec runs tofu
// in its own process group, so cancellation is its only interrupt.
func signalSafeContext(ctx context.Context) context.Context {
	return ctx
}
