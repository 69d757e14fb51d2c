package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitalpath/VitalPath/internal/services"
)

// sessionTTL bounds the session marker; the other submitter keys are
// long-lived on purpose, they are what re-associates a returning visitor.
const sessionTTL = 24 * time.Hour

// RedisSubmitterStore is the shared-state SubmitterStore for multi-instance
// deployments. Key layout:
//
//	vp:submitter:{client}:email    remembered email
//	vp:submitter:{client}:last     last submitted assessment id
//	vp:submitter:{client}:recent   list of JSON pointers, newest first
//	vp:session:{client}            session marker, expires
type RedisSubmitterStore struct {
	rdb *redis.Client
}

func NewRedisClient(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisSubmitterStore(rdb *redis.Client) (*RedisSubmitterStore, error) {
	if rdb == nil {
		return nil, errors.New("nil redis client")
	}
	return &RedisSubmitterStore{rdb: rdb}, nil
}

var _ services.SubmitterStore = (*RedisSubmitterStore)(nil)

func submitterKey(clientID, field string) string {
	return "vp:submitter:" + clientID + ":" + field
}

func (s *RedisSubmitterStore) Remember(clientID, email string) error {
	return s.rdb.Set(context.Background(), submitterKey(clientID, "email"), email, 0).Err()
}

func (s *RedisSubmitterStore) CurrentEmail(clientID string) (string, error) {
	v, err := s.rdb.Get(context.Background(), submitterKey(clientID, "email")).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *RedisSubmitterStore) SetLastSubmitted(clientID, assessmentID string) error {
	return s.rdb.Set(context.Background(), submitterKey(clientID, "last"), assessmentID, 0).Err()
}

func (s *RedisSubmitterStore) LastSubmitted(clientID string) (string, error) {
	v, err := s.rdb.Get(context.Background(), submitterKey(clientID, "last")).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *RedisSubmitterStore) PushRecent(clientID string, ptr services.RecentPointer) error {
	b, err := json.Marshal(ptr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	key := submitterKey(clientID, "recent")
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, string(b))
	pipe.LTrim(ctx, key, 0, int64(services.RecentLimit-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSubmitterStore) Recent(clientID string) ([]services.RecentPointer, error) {
	items, err := s.rdb.LRange(context.Background(), submitterKey(clientID, "recent"), 0, int64(services.RecentLimit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]services.RecentPointer, 0, len(items))
	for _, item := range items {
		var ptr services.RecentPointer
		if err := json.Unmarshal([]byte(item), &ptr); err != nil {
			return nil, fmt.Errorf("decode recent pointer: %w", err)
		}
		out = append(out, ptr)
	}
	return out, nil
}

func (s *RedisSubmitterStore) MarkSession(clientID, source string) error {
	marker, err := json.Marshal(map[string]string{
		"source":    source,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return s.rdb.Set(context.Background(), "vp:session:"+clientID, string(marker), sessionTTL).Err()
}
