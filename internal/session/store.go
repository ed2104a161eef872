package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/config"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/redis"
)

// Store keeps at most one live dialogue session per phone number in Redis.
// Writes replace the whole session document, so concurrent events for the
// same customer resolve last-write-wins; the Redis TTL reclaims expired
// records, and Find double-checks the absolute expiry on read.
type Store struct {
	client *goredis.Client
	clock  booking.Clock
}

func NewStore(client *goredis.Client, clock booking.Clock) *Store {
	return &Store{client: client, clock: clock}
}

// Find returns the live session for the phone number, or nil when none
// exists or the stored one has expired.
func (s *Store) Find(ctx context.Context, phoneNumber string) (*model.Session, error) {
	data, err := s.client.Get(ctx, redis.SessionKey(phoneNumber)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Warn().Err(err).Str("phoneNumber", phoneNumber).Msg("discarding undecodable session")
		return nil, s.Delete(ctx, phoneNumber)
	}

	if session.Expired(s.clock.Now()) {
		if err := s.Delete(ctx, phoneNumber); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &session, nil
}

// Create starts a fresh session in the initial step, replacing any previous
// one for the same phone number.
func (s *Store) Create(ctx context.Context, phoneNumber, userName string) (*model.Session, error) {
	now := s.clock.Now()
	session := &model.Session{
		PhoneNumber: phoneNumber,
		UserName:    userName,
		Step:        model.StepInitial,
		CreatedAt:   now,
		ExpiresAt:   now.Add(config.SessionTTL),
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}

	log.Info().Str("phoneNumber", phoneNumber).Msg("session created")
	return session, nil
}

// Save writes the full session document. The TTL tracks the session's
// absolute expiry so the record disappears on its own.
func (s *Store) Save(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return s.Delete(ctx, session.PhoneNumber)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redis.SessionKey(session.PhoneNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete clears the session, returning the customer to the absent state.
func (s *Store) Delete(ctx context.Context, phoneNumber string) error {
	if err := s.client.Del(ctx, redis.SessionKey(phoneNumber)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	log.Debug().Str("phoneNumber", phoneNumber).Msg("session cleared")
	return nil
}
