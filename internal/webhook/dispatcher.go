package webhook

import (
	"context"
	"sync"

	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/hellausefulsoftware/headercheck/internal/models"
)

// EventHandler processes a single issue event.
type EventHandler interface {
	Handle(ctx context.Context, event models.IssueEvent) error
}

// Dispatcher runs every event on its own goroutine.
type Dispatcher struct {
	ctx     context.Context
	handler EventHandler
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose events run under ctx.
func NewDispatcher(ctx context.Context, handler EventHandler) *Dispatcher {
	return &Dispatcher{
		ctx:     ctx,
		handler: handler,
	}
}

// Dispatch starts handling event and returns immediately. Failures are
// logged and not retried.
func (d *Dispatcher) Dispatch(event models.IssueEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.handler.Handle(d.ctx, event); err != nil {
			logging.Error("Failed to handle issue event",
				"issue", event.Issue.String(),
				"action", event.Action,
				"delivery_id", event.DeliveryID,
				"error", err)
		}
	}()
}

// Wait blocks until every dispatched event has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
