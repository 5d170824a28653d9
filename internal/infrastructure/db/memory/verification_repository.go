package memory

import (
	"context"
	"sync"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// VerificationRepository collects audit events in arrival order.
type VerificationRepository struct {
	mu     sync.Mutex
	events []domain.VerificationEvent
}

func NewVerificationRepository() *VerificationRepository {
	return &VerificationRepository{}
}

func (r *VerificationRepository) InsertEvent(_ context.Context, event *domain.VerificationEvent) error {
	r.mu.Lock()
	r.events = append(r.events, *event)
	r.mu.Unlock()
	return nil
}

// Events returns a snapshot of the recorded events.
func (r *VerificationRepository) Events() []domain.VerificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.VerificationEvent(nil), r.events...)
}
