package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"
)

// EngagementStatusStore is a redis-backed fast path for per-user engagement
// flags (liked/saved). The join tables in Postgres stay the source of truth;
// a missing redis key only means "fall back to the DB", never "false".
type EngagementStatusStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

const (
	// Redis only has string type, there is no boolean or int, so we use "1" to represent true
	RedisTrue  = "1"
	RedisFalse = "0"

	ActionLike = "like"
	ActionSave = "save"
)

var ctx = context.Background()

func GetEngagementStatusStore() (*EngagementStatusStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &EngagementStatusStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeEngagementKey(action string, userId string, itemId string) (string, error) {
	if !r.ValidateId(userId) || !r.ValidateId(itemId) {
		return "", fmt.Errorf("invalid userId or itemId")
	}
	return strings.Join([]string{action, userId, itemId}, r.delimiter), nil
}

// GetEngagedStatus returns a map from item id to engagement flag. Items with
// no redis entry are absent from the map so that the caller can look them up
// from the DB and backfill.
func (r *EngagementStatusStore) GetEngagedStatus(action string, itemIds []string, userId string) (map[string]bool, error) {
	if len(itemIds) == 0 {
		return map[string]bool{}, nil
	}

	keys := []string{}
	for _, id := range itemIds {
		key, err := r.keyParser.EncodeEngagementKey(action, userId, id)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	res, err := r.inner.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	status := map[string]bool{}
	for i, v := range res {
		if v == nil {
			continue
		}
		status[itemIds[i]] = v == RedisTrue
	}
	return status, nil
}

// SetEngagedStatus writes one engagement flag. Concurrent writers for the
// same (user, item) pair are last-write-wins which is fine because the DB is
// the source of truth.
func (r *EngagementStatusStore) SetEngagedStatus(action string, itemId string, userId string, engaged bool) error {
	key, err := r.keyParser.EncodeEngagementKey(action, userId, itemId)
	if err != nil {
		return err
	}
	val := RedisFalse
	if engaged {
		val = RedisTrue
	}
	return r.inner.Set(ctx, key, val, 0).Err()
}
