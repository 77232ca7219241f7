//go:build !linux

package tofu

import "context"

// signalSafeContext detaches ctx from cancellation. Outside Linux,
// terraform-exec leaves tofu in the terminal's process group, so Ctrl+C
// already reaches it once; cancelling as well would deliver a second
// interrupt and make it abort without cleanup.
func signalSafeContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
