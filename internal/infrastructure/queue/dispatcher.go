package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rentaride/rental-system/internal/api/metrics"
	"github.com/rentaride/rental-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes media jobs to a fixed set of workers using consistent
// hashing on the owner id, so one owner's uploads are processed in order.
// Submission is fire-and-forget: the request path hands the descriptor over
// and never waits for compression to finish.
type Dispatcher struct {
	workers []chan ports.MediaJob
	service ports.MediaProcessor
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.MediaProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.MediaJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MediaJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Submit sends a job to the worker responsible for its owner. Non-blocking
// up to channelBuffer capacity.
func (d *Dispatcher) Submit(job ports.MediaJob) {
	idx := d.shardIndex(job.OwnerID)
	d.workers[idx] <- job
	metrics.MediaQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps an owner id deterministically to a worker index.
func (d *Dispatcher) shardIndex(ownerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ownerID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MediaJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.MediaQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.service.Process(ctx, job); err != nil {
				metrics.MediaJobsTotal.WithLabelValues(string(job.Category), "error").Inc()
				d.log.Error().Err(err).
					Str("owner_id", job.OwnerID).
					Str("target_id", job.TargetID).
					Int("worker_id", id).
					Msg("media job failed")
				continue
			}
			metrics.MediaJobsTotal.WithLabelValues(string(job.Category), "ok").Inc()
		}
	}
}
