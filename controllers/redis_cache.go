package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// 旁路缓存-存的是JSON数据，redis挂了调用方直接回源磁盘
func setCache[T any](rdb *redis.Client, key string, data T, ttl time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return rdb.Set(key, b, ttl).Err()
}

func getCache[T any](rdb *redis.Client, key string) (T, error) {
	var data T
	if rdb == nil {
		return data, fmt.Errorf("redis client is nil")
	}
	result, err := rdb.Get(key).Bytes()
	if err != nil {
		if err == redis.Nil {
			// 键不存在，返回零值和特定的错误
			return data, fmt.Errorf("cache key %s not found", key)
		}
		return data, fmt.Errorf("redis get error: %w", err)
	}
	if err := json.Unmarshal(result, &data); err != nil {
		return data, fmt.Errorf("json unmarshal error: %w", err)
	}
	return data, nil
}
