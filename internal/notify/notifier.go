// Package notify publishes emitted signals to external sinks. The
// engine only returns signals; delivery concerns live here.
package notify

import (
	"context"

	"github.com/Alias1177/signalengine/internal/model"
)

// Notifier delivers an emitted signal to one sink.
type Notifier interface {
	Publish(ctx context.Context, sig model.Signal) error
}
