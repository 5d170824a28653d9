package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// SessionService implements the session store on top of a raw record
// repository. Records are JSON-encoded Users.
type SessionService struct {
	repo   ports.SessionRepository
	ttl    time.Duration
	logger zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{repo: repo, ttl: ttl, logger: logger}
}

// SetSession replaces the record held for sid.
func (s *SessionService) SetSession(ctx context.Context, sid string, user domain.User) error {
	if sid == "" {
		return domain.ErrAbsentSession
	}
	record, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	if err := s.repo.Save(ctx, sid, record, s.ttl); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// GetSession returns the current user of sid. A missing or undecodable
// record yields (nil, nil); only storage failures are returned as errors.
func (s *SessionService) GetSession(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, nil
	}
	record, err := s.repo.Load(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	var user *domain.User
	if err := json.Unmarshal(record, &user); err != nil {
		s.logger.Debug().Err(err).Str("sid", sid).Msg("malformed session record treated as absent")
		return nil, nil
	}
	return user, nil
}

func (s *SessionService) ClearSession(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionService) IsAuthenticated(ctx context.Context, sid string) bool {
	user, err := s.GetSession(ctx, sid)
	if err != nil {
		s.logger.Warn().Err(err).Str("sid", sid).Msg("session lookup failed")
		return false
	}
	return user != nil
}

func (s *SessionService) IsAdmin(ctx context.Context, sid string) bool {
	user, err := s.GetSession(ctx, sid)
	if err != nil {
		s.logger.Warn().Err(err).Str("sid", sid).Msg("session lookup failed")
		return false
	}
	return user.IsAdmin()
}
