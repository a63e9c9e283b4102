package redisad

import (
	"context"

	"github.com/redis/go-redis/v9"

	"stays/internal/adapters/observability"
)

const currencyKey = "stays:prefs:currency"

// Store persists the currency preference in redis. Satisfies
// domain.PreferenceStore.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	v, err := s.c.Get(ctx, currencyKey).Result()
	if err == redis.Nil {
		observability.ObservePrefs("load_miss")
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	observability.ObservePrefs("load_hit")
	return v, true, nil
}

func (s *Store) Save(ctx context.Context, currency string) error {
	observability.ObservePrefs("save")
	// no TTL: the preference survives until the user changes it
	return s.c.Set(ctx, currencyKey, currency, 0).Err()
}

func (s *Store) Close() error { return s.c.Close() }
