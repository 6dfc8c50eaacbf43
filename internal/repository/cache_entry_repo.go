package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schedule-viewer/internal/cache"
	"schedule-viewer/internal/model"
)

// CacheEntryRepository schedule_cache 表数据访问，实现 cache.Store
type CacheEntryRepository interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type cacheEntryRepo struct {
	db *gorm.DB
}

// NewCacheEntryRepo 创建 CacheEntryRepository 实例
func NewCacheEntryRepo(db *gorm.DB) CacheEntryRepository {
	return &cacheEntryRepo{db: db}
}

// Init 校验表已由迁移创建
func (r *cacheEntryRepo) Init(ctx context.Context) error {
	if !r.db.WithContext(ctx).Migrator().HasTable(&model.CacheEntry{}) {
		return fmt.Errorf("表 %s 不存在，请先执行数据库迁移", model.CacheEntry{}.TableName())
	}
	return nil
}

func (r *cacheEntryRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.CacheEntry
	err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Put 按主键 upsert
func (r *cacheEntryRepo) Put(ctx context.Context, key string, value []byte) error {
	entry := model.CacheEntry{CacheKey: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
