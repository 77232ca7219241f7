package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

var levelMarkers = map[status.Level]string{
	status.LevelInfo:     "ℹ️ ",
	status.LevelProgress: "⏳",
	status.LevelSuccess:  "✅",
	status.LevelWarning:  "⚠️ ",
	status.LevelError:    "❌",
}

// statusHandler prints each update as a marked line on out and mirrors it to
// slog, keeping the presentation concern in the application layer
func statusHandler(out io.Writer) status.Handler {
	return func(update status.Update) {
		marker, ok := levelMarkers[update.Level]
		if !ok {
			marker = levelMarkers[status.LevelInfo]
		}
		fmt.Fprintf(out, "%s %s\n", marker, update.Message)

		attrs := []any{
			"message", update.Message,
		}

		if update.Step != "" {
			attrs = append(attrs, "step", update.Step)
		}

		// Add metadata as individual attributes
		for key, value := range update.Metadata {
			attrs = append(attrs, key, value)
		}

		switch update.Level {
		case status.LevelProgress:
			slog.Debug("Progress", attrs...)
		case status.LevelSuccess:
			slog.Debug("Success", attrs...)
		case status.LevelWarning:
			slog.Warn("Warning", attrs...)
		case status.LevelError:
			slog.Error("Error", attrs...)
		default:
			slog.Debug("Status", attrs...)
		}
	}
}
