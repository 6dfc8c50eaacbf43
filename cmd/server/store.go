package main

import (
	"go.uber.org/zap"

	"schedule-viewer/config"
	"schedule-viewer/internal/cache"
	"schedule-viewer/internal/repository"
	"schedule-viewer/pkg/boltdb"
	"schedule-viewer/pkg/database"
	"schedule-viewer/pkg/redis"
)

// storeSet 按 cache.driver 打开的存储及需要在退出时释放的资源
type storeSet struct {
	Store  cache.Store
	Driver string // 实际生效的驱动，回退后为 memory
	Redis  *redis.Client
	closes []func()
}

// Close 逆序释放资源
func (s *storeSet) Close() {
	for i := len(s.closes) - 1; i >= 0; i-- {
		s.closes[i]()
	}
}

// openStore 按配置打开缓存存储
//
// 缓存不是必需依赖：持久化存储不可用时回退到进程内存储并告警，服务照常启动。
// 启用限流时即使驱动不是 redis 也会尝试连接 Redis。
func openStore(cfg *config.Config, logger *zap.Logger) *storeSet {
	set := &storeSet{}

	switch cfg.Cache.Driver {
	case "bolt":
		st, err := boltdb.Open(cfg.Cache.BoltPath)
		if err != nil {
			logger.Warn("BoltDB 打开失败，回退到内存缓存", zap.String("path", cfg.Cache.BoltPath), zap.Error(err))
			break
		}
		set.Store, set.Driver = st, "bolt"
		set.closes = append(set.closes, func() { st.Close() })

	case "redis":
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 不可用，回退到内存缓存", zap.Error(err))
			break
		}
		set.Store, set.Driver, set.Redis = rdb, "redis", rdb

	case "postgres":
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Warn("数据库连接失败，回退到内存缓存", zap.Error(err))
			break
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Warn("获取数据库连接失败，回退到内存缓存", zap.Error(err))
			break
		}
		if err := database.Migrate(db, logger); err != nil {
			logger.Warn("数据库迁移失败，回退到内存缓存", zap.Error(err))
			sqlDB.Close()
			break
		}
		set.Store, set.Driver = repository.NewRepository(db).CacheEntry, "postgres"
		set.closes = append(set.closes, func() { sqlDB.Close() })
	}

	if set.Store == nil {
		set.Store, set.Driver = cache.NewMemoryStore(), "memory"
	}

	// 限流复用缓存的 Redis 连接，否则单独连接
	if cfg.RateLimit.Enabled && set.Redis == nil {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
		} else {
			set.Redis = rdb
		}
	}
	if set.Redis != nil {
		rdb := set.Redis
		set.closes = append(set.closes, func() { rdb.Close() })
	}

	logger.Info("缓存存储已就绪", zap.String("driver", set.Driver))
	return set
}
