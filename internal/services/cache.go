package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Registered dataset names
const (
	DatasetBootstrap = "bootstrap"
	DatasetFixtures  = "fixtures"
)

// Well-known store keys, one per cached dataset
const (
	KeyBootstrap = "fpl:bootstrap"
	KeyFixtures  = "fpl:fixtures"
)

// ErrCorruptEnvelope marks a stored value that does not decode into an envelope
var ErrCorruptEnvelope = errors.New("stored envelope is corrupt")

// Envelope is the persisted unit: one snapshot plus its fetch timestamp
type Envelope struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Freshness is the three-way classification of a stored envelope
type Freshness int

const (
	FreshnessAbsent Freshness = iota
	FreshnessFresh
	FreshnessStale
)

func (f Freshness) String() string {
	switch f {
	case FreshnessFresh:
		return "fresh"
	case FreshnessStale:
		return "stale"
	default:
		return "absent"
	}
}

// Classify derives the freshness of an envelope at a point in time.
// fresh: age < ttl; stale: ttl <= age < 2*ttl; absent otherwise.
func Classify(now time.Time, env *Envelope, ttl time.Duration) Freshness {
	if env == nil {
		return FreshnessAbsent
	}
	age := now.Sub(env.FetchedAt)
	switch {
	case age < ttl:
		return FreshnessFresh
	case age < 2*ttl:
		return FreshnessStale
	default:
		return FreshnessAbsent
	}
}

// SnapshotStore persists envelopes under well-known keys
type SnapshotStore interface {
	Load(ctx context.Context, key string) (*Envelope, error)
	Save(ctx context.Context, key string, env *Envelope) error
}

// RedisStore persists envelopes in Redis with a store-level expiry of twice
// the freshness window, so stale data outlives the TTL but not the window
// where it could still be served.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed snapshot store
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Load reads the envelope stored under key. A missing key returns (nil, nil);
// a value that fails to decode returns ErrCorruptEnvelope.
func (s *RedisStore) Load(ctx context.Context, key string) (*Envelope, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"component": "snapshot_store",
			"key":       key,
		}).Warn("Stored envelope failed to decode, treating as absent")
		return nil, fmt.Errorf("%w: %s", ErrCorruptEnvelope, key)
	}

	return env, nil
}

// Save writes the envelope under key, replacing any previous value wholesale
func (s *RedisStore) Save(ctx context.Context, key string, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, 2*s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}

	s.logger.WithFields(logrus.Fields{
		"component":  "snapshot_store",
		"key":        key,
		"fetched_at": env.FetchedAt,
		"bytes":      len(data),
	}).Debug("Stored snapshot envelope")

	return nil
}

// decodeEnvelope handles the two shapes a stored value can take: the envelope
// object itself, or a JSON string wrapping the encoded envelope (writers that
// serialize the value twice). Each variant is handled explicitly.
func decodeEnvelope(raw []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty value")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("failed to unwrap string-encoded envelope: %w", err)
		}
		trimmed = []byte(inner)
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	if env.FetchedAt.IsZero() || len(env.Payload) == 0 {
		return nil, errors.New("envelope missing payload or fetch timestamp")
	}

	return &env, nil
}
