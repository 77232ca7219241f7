package provision

import (
	"context"
	"fmt"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

// bestEffort reports err from a non-critical step as a warning and tells the
// caller whether the step succeeded. The run always continues.
func bestEffort(ctx context.Context, step, what string, err error) bool {
	if err == nil {
		return true
	}

	status.Send(ctx, status.NewUpdate(status.LevelWarning,
		fmt.Sprintf("%s failed (non-critical): %v", what, err)).
		WithStep(step).
		WithMetadata("error", err.Error()))

	return false
}
