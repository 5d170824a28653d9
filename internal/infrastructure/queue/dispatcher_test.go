package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type stubRepo struct {
	mu     sync.Mutex
	events []domain.VerificationEvent
	err    error
}

func (r *stubRepo) InsertEvent(_ context.Context, e *domain.VerificationEvent) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.events = append(r.events, *e)
	r.mu.Unlock()
	return nil
}

func (r *stubRepo) snapshot() []domain.VerificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.VerificationEvent(nil), r.events...)
}

type countingObserver struct {
	stored, failed, dropped atomic.Int64
}

func (o *countingObserver) Stored()                { o.stored.Add(1) }
func (o *countingObserver) Failed()                { o.failed.Add(1) }
func (o *countingObserver) Dropped()               { o.dropped.Add(1) }
func (o *countingObserver) QueueDepth(string, int) {}

func TestDispatcher_PersistsInOrderPerHash(t *testing.T) {
	repo := &stubRepo{}
	obs := &countingObserver{}
	d := NewDispatcher(3, repo, obs, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 1; i <= 10; i++ {
		d.Record(domain.VerificationEvent{Hash: "0xsame", AIRiskScore: i})
	}
	cancel()
	d.Wait()

	events := repo.snapshot()
	if len(events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(events))
	}
	for i, e := range events {
		if e.AIRiskScore != i+1 {
			t.Fatalf("event %d out of order: score %d", i, e.AIRiskScore)
		}
	}
	if obs.stored.Load() != 10 {
		t.Errorf("stored = %d, want 10", obs.stored.Load())
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &stubRepo{}, nil, zerolog.Nop())
	first := d.shardIndex("0xabc")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("0xabc"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &stubRepo{}
	obs := &countingObserver{}
	d := NewDispatcher(1, repo, obs, zerolog.Nop())

	// Not started: the single queue fills up.
	for i := 0; i < channelBuffer+5; i++ {
		d.Record(domain.VerificationEvent{Hash: "0xabc"})
	}

	if got := obs.dropped.Load(); got != 5 {
		t.Fatalf("dropped = %d, want 5", got)
	}
}

func TestDispatcher_StoreFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	obs := &countingObserver{}
	d := NewDispatcher(1, repo, obs, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	d.Record(domain.VerificationEvent{Hash: "0xabc"})

	deadline := time.After(2 * time.Second)
	for obs.failed.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("failure was never reported")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	d.Wait()
}
