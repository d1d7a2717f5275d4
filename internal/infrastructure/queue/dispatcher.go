package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes session transitions to a fixed set of workers using
// consistent hashing on the session id, so sinks see each session's
// transitions in order.
type Dispatcher struct {
	workers []chan domain.SessionChange
	sink    ports.SessionChangeSink
	log     zerolog.Logger
	stopped chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.SessionChangeSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionChange, numWorkers),
		sink:    sink,
		log:     log,
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionChange, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.stopped)
	}()
}

// Enqueue sends a change to the worker responsible for its session.
// The call is non-blocking up to channelBuffer capacity. Once the workers
// are stopped, a change that does not fit in the buffer is dropped.
func (d *Dispatcher) Enqueue(change domain.SessionChange) {
	ch := d.workers[d.shardIndex(change.SessionID)]
	select {
	case ch <- change:
		return
	default:
	}
	select {
	case ch <- change:
	case <-d.stopped:
		d.log.Warn().
			Str("session_id", change.SessionID).
			Str("transition", string(change.Kind)).
			Msg("dispatcher stopped, session change dropped")
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sink.Handle(ctx, change); err != nil {
				d.log.Error().Err(err).
					Str("session_id", change.SessionID).
					Str("transition", string(change.Kind)).
					Int("worker_id", id).
					Msg("session change handling failed")
			}
		}
	}
}

// Sinks fans a change out to every sink, in order. All sinks run even if
// one fails; the first error is returned.
type Sinks []ports.SessionChangeSink

func (s Sinks) Handle(ctx context.Context, change domain.SessionChange) error {
	var first error
	for _, sink := range s {
		if err := sink.Handle(ctx, change); err != nil && first == nil {
			first = err
		}
	}
	return first
}
