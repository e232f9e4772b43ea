package database

import (
	"context"
	"fmt"
	"time"

	"elearn_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 建立 redis 连接并做一次带超时的连通性检查。
// redis 在本服务里只承担用户级写锁，连不上时调用方可降级运行
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// AcquireLock 以 SETNX 获取分布式锁，带 TTL 防止持有者崩溃后死锁，
// 轮询至多 attempts 次。返回释放函数和是否获取成功；rdb 为空或
// redis 出错时视为未获取，调用方退化为仅靠乐观版本检查串行化
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, attempts int) (func(), bool) {
	release := func() {}
	if rdb == nil {
		return release, false
	}
	for i := 0; i < attempts; i++ {
		ok, err := rdb.SetNX(ctx, key, 1, ttl).Result()
		if err != nil {
			return release, false
		}
		if ok {
			return func() { rdb.Del(context.Background(), key) }, true
		}
		select {
		case <-ctx.Done():
			return release, false
		case <-time.After(100 * time.Millisecond):
		}
	}
	return release, false
}
