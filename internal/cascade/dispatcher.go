package cascade

import (
	"context"
	"time"

	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const recomputeTimeout = 10 * time.Second

// Recomputer refreshes the checksum token for one scope.
type Recomputer interface {
	Recompute(ctx context.Context, scope checksum.Scope) error
}

// Publisher is what the write paths see: fire an event after a commit
// and move on. Delivery is at least once; recomputation is idempotent.
type Publisher interface {
	Publish(ev Event)
}

// Dispatcher consumes write events and drives the recalculator on a
// worker pool. Recompute failures never reach the writer that caused
// them; they are logged and the token stays stale until the next write
// to the same scope.
type Dispatcher struct {
	recomputer Recomputer
	logger     *zap.Logger
	events     chan Event
	workers    int
	done       chan struct{}
}

func NewDispatcher(recomputer Recomputer, logger *zap.Logger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		recomputer: recomputer,
		logger:     logger,
		events:     make(chan Event, queueSize),
		workers:    workers,
		done:       make(chan struct{}),
	}
}

func (d *Dispatcher) Run() {
	defer close(d.done)

	p := pool.New().WithMaxGoroutines(d.workers)
	for ev := range d.events {
		ev := ev
		p.Go(func() {
			d.handle(ev)
		})
	}
	p.Wait()
}

// Publish enqueues an event. When the queue is full the event is
// dropped with a warning: the checksum simply stays stale until the
// next write to the same scope.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("cascade queue full, dropping event",
			zap.String("kind", string(ev.Kind)),
			zap.String("collection", ev.Collection),
		)
	}
}

// Stop drains the queue and waits for in-flight recomputations. No
// Publish calls may happen after Stop.
func (d *Dispatcher) Stop() {
	close(d.events)
	<-d.done
}

// handle runs an event's scopes in order; a user write must bump the
// users version before the dependent tokens recompute.
func (d *Dispatcher) handle(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	for _, scope := range ScopesFor(ev) {
		if err := d.recomputer.Recompute(ctx, scope); err != nil {
			d.logger.Error("checksum recompute failed",
				zap.String("scope", string(scope.Type)),
				zap.String("collection", ev.Collection),
				zap.Error(err),
			)
		}
	}
}
