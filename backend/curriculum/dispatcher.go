package curriculum

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sink receives generated curricula.
type Sink interface {
	CurriculumGenerated(ctx context.Context, userID, goalID uint, text string) error
}

// Dispatcher runs webhook calls on a bounded pool of workers. Failures are
// logged and never reach the caller that enqueued the request.
type Dispatcher struct {
	gen     Generator
	log     *zap.Logger
	workers int

	mu     sync.Mutex
	queue  chan Request
	closed bool
	group  *errgroup.Group
}

func NewDispatcher(gen Generator, workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		gen:     gen,
		log:     log.Named("curriculum.dispatcher"),
		workers: workers,
		queue:   make(chan Request, queueSize),
	}
}

// Start launches the workers. Generated text is handed to sink.
func (d *Dispatcher) Start(ctx context.Context, sink Sink) {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for req := range d.queue {
				d.handle(gctx, sink, req)
			}
			return nil
		})
	}
	d.mu.Lock()
	d.group = g
	d.mu.Unlock()
}

func (d *Dispatcher) handle(ctx context.Context, sink Sink, req Request) {
	log := d.log.With(zap.Uint("goal_id", req.GoalID), zap.Uint("user_id", req.UserID))
	text, err := d.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			log.Debug("curriculum generation skipped")
			return
		}
		log.Warn("curriculum generation failed", zap.Error(err))
		return
	}
	if err := sink.CurriculumGenerated(ctx, req.UserID, req.GoalID, text); err != nil {
		log.Warn("storing curriculum failed", zap.Error(err))
		return
	}
	log.Info("curriculum stored", zap.Int("length", len(text)))
}

// Enqueue schedules req without blocking. It reports false when the queue is
// full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- req:
		return true
	default:
		d.log.Warn("curriculum queue full, dropping request", zap.Uint("goal_id", req.GoalID))
		return false
	}
}

// Stop drains the queue and waits for the workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	g := d.group
	d.mu.Unlock()
	if g != nil {
		g.Wait()
	}
}
