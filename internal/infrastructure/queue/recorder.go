package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/safestreet/account-service/internal/core/domain"
	"github.com/safestreet/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Recorder persists audit events asynchronously through a fixed set of
// workers, sharded by account so that one user's events keep their order.
// Recording never blocks a request: a full shard drops the event with a
// warning instead of applying backpressure.
type Recorder struct {
	workers []chan domain.AuthEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for persistence.
func (r *Recorder) Record(event domain.AuthEvent) {
	select {
	case r.workers[r.shardIndex(event)] <- event:
	default:
		r.log.Warn().
			Str("action", string(event.Action)).
			Msg("audit shard full, event dropped")
	}
}

// shardIndex maps an event deterministically to a worker index. Events
// without a user id (failed lookups) shard on the attempted identifier.
func (r *Recorder) shardIndex(event domain.AuthEvent) int {
	key := event.UserID
	if key == "" {
		key = event.Identifier
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Recorder) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if err := r.repo.InsertEvent(writeCtx, &event); err != nil {
				r.log.Error().Err(err).
					Str("action", string(event.Action)).
					Int("worker_id", id).
					Msg("audit write failed")
			}
			cancel()
		}
	}
}
