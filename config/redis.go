package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects the batch-lookup cache. The engine degrades to
// direct database lookups when Redis is unreachable, so failures here only
// log a warning.
func NewRedisClient() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", RedisHost, RedisPort),
		Password:     RedisPassword,
		DB:           RedisDB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: redis not reachable, batch cache disabled: %v", err)
		return nil
	}

	return rdb
}
