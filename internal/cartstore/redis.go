package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/webcraft-id/kantinku-backend/internal/cart"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	redisclient "github.com/webcraft-id/kantinku-backend/pkg/redis"
)

// RedisFactory produces per-user record stores on the shared Redis client.
// This is the production backend: each user's records live under their own
// key prefix, the server-side counterpart of per-browser local storage.
type RedisFactory struct {
	Client *redisclient.Client
	TTL    time.Duration
}

// ForUser implements cart.StoreFactory.
func (f RedisFactory) ForUser(userID string) cart.Store {
	return &redisStore{client: f.Client, userID: userID, ttl: f.TTL}
}

type redisStore struct {
	client *redisclient.Client
	userID string
	ttl    time.Duration
}

func (s *redisStore) Load(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.client.CartRecordKey(s.userID, key))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart record")
	}
	return value, true, nil
}

func (s *redisStore) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.CartRecordKey(s.userID, key), value, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart record")
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.CartRecordKey(s.userID, key)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart record")
	}
	return nil
}
