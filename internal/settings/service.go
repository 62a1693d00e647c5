package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/mandi-labs/backend-mandi/internal/common"
	"github.com/mandi-labs/backend-mandi/internal/events"
	"github.com/mandi-labs/backend-mandi/internal/obs"
)

// Store captures the persistence methods required by the settings service.
type Store interface {
	GetActive(ctx context.Context) (Settings, error)
	GetByID(ctx context.Context, id string) (Settings, error)
	Insert(ctx context.Context, in Settings) (Settings, error)
	Update(ctx context.Context, id string, in Settings) (Settings, error)
	Activate(ctx context.Context, id string) (Settings, error)
}

// Locker serialises the activate operation across instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

const activateLockKey = "lock:settings:activate"

// Service resolves the active settings record and coordinates admin writes.
type Service struct {
	Store   Store
	Cache   *Cache
	Lock    Locker
	LockTTL time.Duration
	Events  *events.Bus
	Logger  zerolog.Logger
}

// Resolve returns the active admin_default settings, falling back to the
// built-in defaults when nothing has been persisted yet.
func (s *Service) Resolve(ctx context.Context) (Settings, error) {
	if s == nil || s.Store == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	var cached Settings
	if hit, err := s.Cache.GetActive(ctx, &cached); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache read failed")
	} else if hit {
		countCacheLookup("hit")
		return cached, nil
	}
	countCacheLookup("miss")
	active, err := s.Store.GetActive(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	if err := s.Cache.SetActive(ctx, active); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache write failed")
	}
	return active, nil
}

// Create persists a new settings record. Creating an active record
// deactivates existing siblings inside the store transaction.
func (s *Service) Create(ctx context.Context, in Settings) (Settings, error) {
	if s == nil || s.Store == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	in.SettingsType = TypeAdminDefault
	created, err := s.Store.Insert(ctx, in)
	if err != nil {
		return Settings{}, err
	}
	s.afterWrite(ctx, events.TopicSettingsUpdated, created)
	return created, nil
}

// Update overwrites the GST and delivery payloads of an existing record.
func (s *Service) Update(ctx context.Context, id string, in Settings) (Settings, error) {
	if s == nil || s.Store == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	updated, err := s.Store.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, common.NotFound("settings record not found")
		}
		return Settings{}, err
	}
	s.afterWrite(ctx, events.TopicSettingsUpdated, updated)
	return updated, nil
}

// Activate makes the target record the single active default. The Redis lock
// keeps concurrent activations from interleaving across instances; the store
// transaction guarantees the invariant even without it.
func (s *Service) Activate(ctx context.Context, id string) (Settings, error) {
	if s == nil || s.Store == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	var activated Settings
	run := func(ctx context.Context) error {
		out, err := s.Store.Activate(ctx, id)
		if err != nil {
			return err
		}
		activated = out
		return nil
	}
	var err error
	if s.Lock != nil {
		err = s.Lock.WithLock(ctx, activateLockKey, s.LockTTL, run)
	} else {
		err = run(ctx)
	}
	countActivation(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, common.NotFound("settings record not found")
		}
		return Settings{}, err
	}
	s.afterWrite(ctx, events.TopicSettingsActivated, activated)
	return activated, nil
}

func countCacheLookup(outcome string) {
	if obs.SettingsCacheLookups != nil {
		obs.SettingsCacheLookups.WithLabelValues(outcome).Inc()
	}
}

func countActivation(err error) {
	if obs.SettingsActivationTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.SettingsActivationTotal.WithLabelValues(result).Inc()
}

// afterWrite invalidates the cache and emits the change event. Neither
// failure propagates to the caller; the write has already committed.
func (s *Service) afterWrite(ctx context.Context, topic string, record Settings) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache invalidate failed")
	}
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, record.ID, record); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("settings event emit failed")
	}
}
