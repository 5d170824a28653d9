package ports

import (
	"context"
	"time"
)

// SessionRepository stores the raw session record for a session id.
// Load returns (nil, nil) when no record exists; decoding is left to the
// caller so that malformed data can be treated as absent.
type SessionRepository interface {
	Save(ctx context.Context, sid string, record []byte, ttl time.Duration) error
	Load(ctx context.Context, sid string) ([]byte, error)
	Delete(ctx context.Context, sid string) error
}
