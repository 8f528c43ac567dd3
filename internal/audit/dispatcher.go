package audit

import (
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/metrics"
)

// Event is one system audit record: user management, settings and
// authentication actions.
type Event struct {
	UserID   string
	Action   string
	Entity   string
	EntityID string
	Metadata any
}

// Recorder accepts audit events without blocking the caller.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	logger *Logger
	zap    *zap.Logger
	queue  chan Event

	closeOnce sync.Once
	done      chan struct{}
}

const queueSize = 100

func NewDispatcher(logger *Logger, zl *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		zap:    logging.OrNop(zl),
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.logger.Log(ev); err != nil {
			metrics.SideEffectFailures.WithLabelValues("audit").Inc()
			d.zap.Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.String("entity", ev.Entity),
				zap.Error(err),
			)
		}
	}
}

// Dispatch queues ev. When the queue is full the event is dropped; the
// audit trail never fails a request.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		metrics.SideEffectFailures.WithLabelValues("audit").Inc()
		d.zap.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for queued ones to be written.
// Dispatch must not be called after Close.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

// Emit dispatches ev when r is configured.
func Emit(r Recorder, ev Event) {
	if r != nil {
		r.Dispatch(ev)
	}
}
