package config

import (
	"time"

	"github.com/Luozhiyan/demo-fire-gpt/log"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

const (
	// 案例报告的缓存key前缀，值是 report.json 解析后的JSON
	RedisKeyReportPrefix = "case:report:"

	ReportCacheTTL = 30 * time.Minute // 报告缓存时间
)

// redis只做旁路缓存，连不上也不挡服务启动，读不到就回源磁盘
func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{ //配置选项Options是结构体
		Addr:         cfg.Redis.Addr,
		DB:           cfg.Redis.DB,
		Password:     cfg.Redis.Password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  800 * time.Millisecond, // 读超时
		WriteTimeout: 800 * time.Millisecond, // 写超时
		PoolSize:     20,
		MinIdleConns: 5,
	}) //返回一个客户端
	if _, err := client.Ping().Result(); err != nil {
		log.L().Error("Redis connection failed, report cache disabled", zap.Error(err))
	} else {
		log.L().Info("Redis connection success", zap.String("addr", cfg.Redis.Addr))
	}
	return client
}
