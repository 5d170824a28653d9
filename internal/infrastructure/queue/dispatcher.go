package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	storeTimeout   = 5 * time.Second
)

// Observer is notified about every event leaving the dispatcher.
type Observer interface {
	Stored()
	Failed()
	Dropped()
	QueueDepth(worker string, depth int)
}

type nopObserver struct{}

func (nopObserver) Stored()                {}
func (nopObserver) Failed()                {}
func (nopObserver) Dropped()               {}
func (nopObserver) QueueDepth(string, int) {}

// Dispatcher persists verification audit events off the request path. Events
// are sharded on the certificate hash so that the audit trail of one
// certificate is written in order.
type Dispatcher struct {
	workers  []chan domain.VerificationEvent
	repo     ports.VerificationRepository
	observer Observer
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. observer may be nil.
func NewDispatcher(numWorkers int, repo ports.VerificationRepository, observer Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if observer == nil {
		observer = nopObserver{}
	}
	d := &Dispatcher{
		workers:  make([]chan domain.VerificationEvent, numWorkers),
		repo:     repo,
		observer: observer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.VerificationEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// once ctx is cancelled; Wait blocks until they are done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues event for persistence. It never blocks: when the worker
// queue is full the event is dropped.
func (d *Dispatcher) Record(event domain.VerificationEvent) {
	idx := d.shardIndex(event.Hash)
	select {
	case d.workers[idx] <- event:
		d.observer.QueueDepth(strconv.Itoa(idx), len(d.workers[idx]))
	default:
		d.observer.Dropped()
		d.log.Warn().Str("hash", event.Hash).Int("worker_id", idx).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a certificate hash deterministically to a worker index.
func (d *Dispatcher) shardIndex(hash string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(hash))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.VerificationEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.store(context.WithoutCancel(ctx), id, event)
		}
	}
}

// drain stores whatever is still queued after shutdown was requested.
func (d *Dispatcher) drain(id int, ch <-chan domain.VerificationEvent) {
	for {
		select {
		case event := <-ch:
			d.store(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) store(ctx context.Context, id int, event domain.VerificationEvent) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		d.observer.Failed()
		d.log.Error().Err(err).
			Str("hash", event.Hash).
			Int("worker_id", id).
			Msg("audit event persistence failed")
		return
	}
	d.observer.Stored()
	d.observer.QueueDepth(strconv.Itoa(id), len(d.workers[id]))
}
