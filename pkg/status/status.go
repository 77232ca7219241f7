package status

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultChannelSize is the buffer size of the status channel created by StartHandler
	DefaultChannelSize = 100

	// DefaultFlushTimeout bounds how long cleanup waits for queued updates to be handled
	DefaultFlushTimeout = 5 * time.Second
)

// Level is the severity of a status update
type Level string

const (
	// LevelInfo is a plain informational line
	LevelInfo Level = "info"

	// LevelProgress reports a step that is still running (waiting, polling)
	LevelProgress Level = "progress"

	// LevelSuccess reports a step that completed
	LevelSuccess Level = "success"

	// LevelWarning reports a non-fatal problem; the run continues
	LevelWarning Level = "warning"

	// LevelError reports a failed check or a fatal problem
	LevelError Level = "error"
)

// Update is one status line emitted by a command while it runs
type Update struct {
	// Level is the severity of this update
	Level Level

	// Message is the human-readable status line
	Message string

	// Step names the workflow step that produced the update (e.g. "zone", "records", "propagation")
	Step string

	// Metadata holds structured values that accompany the message
	Metadata map[string]any

	// Timestamp is when the update was created
	Timestamp time.Time
}

// NewUpdate creates an Update stamped with the current time
func NewUpdate(level Level, message string) Update {
	return Update{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithStep tags the update with the workflow step that produced it
func (u Update) WithStep(step string) Update {
	u.Step = step
	return u
}

// WithMetadata attaches a key/value pair to the update
func (u Update) WithMetadata(key string, value any) Update {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = value
	return u
}

// Send delivers an update to the channel stored in ctx, if any.
// It never blocks: when the channel is full the update is dropped.
func Send(ctx context.Context, update Update) {
	ch := getChannel(ctx)
	if ch == nil {
		return
	}

	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	select {
	case ch <- update:
	default:
	}
}

// Sendf sends a formatted update at the given level
func Sendf(ctx context.Context, level Level, format string, args ...any) {
	Send(ctx, Update{
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	})
}

// Info sends an informational update
func Info(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelInfo, message))
}

// Infof sends a formatted informational update
func Infof(ctx context.Context, format string, args ...any) {
	Sendf(ctx, LevelInfo, format, args...)
}

// Successf sends a formatted success update
func Successf(ctx context.Context, format string, args ...any) {
	Sendf(ctx, LevelSuccess, format, args...)
}

// Warning sends a warning update
func Warning(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelWarning, message))
}

// Warningf sends a formatted warning update
func Warningf(ctx context.Context, format string, args ...any) {
	Sendf(ctx, LevelWarning, format, args...)
}

// Handler processes each update received on the status channel
type Handler func(Update)

// CleanupFunc closes the status channel and waits for the handler to drain it.
// Defer it right after StartHandler.
type CleanupFunc func()

// StartHandler attaches a buffered status channel to ctx and consumes it on a
// goroutine with handler.
//
//	ctx, cleanup := status.StartHandler(ctx, func(u status.Update) {
//	    fmt.Println(u.Message)
//	})
//	defer cleanup()
func StartHandler(ctx context.Context, handler Handler) (context.Context, CleanupFunc) {
	return StartHandlerWithOptions(ctx, handler, DefaultChannelSize, DefaultFlushTimeout)
}

// StartHandlerWithOptions is StartHandler with a custom channel size and flush timeout
func StartHandlerWithOptions(ctx context.Context, handler Handler, channelSize int, flushTimeout time.Duration) (context.Context, CleanupFunc) {
	ch := make(chan Update, channelSize)
	ctx = WithChannel(ctx, ch)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for update := range ch {
			handler(update)
		}
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(ch)

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(flushTimeout):
			}
		})
	}

	return ctx, cleanup
}
