// Package cache 按学号缓存上游课表响应。
//
// 缓存只是性能优化：任何存储层错误都会被记录并视为未命中，
// 过期记录不会被删除，网络失败时仍可通过 GetStale 读取。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL 缓存记录的默认有效期
const DefaultTTL = 30 * time.Minute

// KeyPrefix 课表记录在存储中的键前缀
const KeyPrefix = "schedule:"

// ErrNotFound 存储中不存在该键
var ErrNotFound = errors.New("cache: key not found")

// Store 底层键值存储能力
//
// 实现需保证 Init 可重复调用；Get 在键不存在时返回 ErrNotFound。
type Store interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Record 一条缓存记录（时间戳为毫秒，与前端 CachedData 一致）
type Record struct {
	StudentID string          `json:"studentId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Expiry    int64           `json:"expiry"`
}

// CachedAt 写入时间
func (r *Record) CachedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// ExpiresAt 过期时间
func (r *Record) ExpiresAt() time.Time {
	return time.UnixMilli(r.Expiry)
}

// FreshAt 记录在 now 时刻是否仍有效（now < expiry）
func (r *Record) FreshAt(now time.Time) bool {
	return now.UnixMilli() < r.Expiry
}

// Option 缓存可选配置
type Option func(*Cache)

// WithTTL 覆盖默认有效期
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache 课表缓存
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// New 创建缓存，store 由调用方注入
func New(store Store, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL 当前有效期
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Init 准备底层存储，可重复调用；失败只记录日志
func (c *Cache) Init(ctx context.Context) {
	if err := c.store.Init(ctx); err != nil {
		c.logger.Warn("缓存存储初始化失败，缓存将表现为未命中", zap.Error(err))
	}
}

// Get 读取未过期的记录；过期、不存在或读取失败均返回 nil
func (c *Cache) Get(ctx context.Context, studentID string) *Record {
	rec := c.load(ctx, studentID)
	if rec == nil {
		return nil
	}
	if !rec.FreshAt(c.now()) {
		return nil
	}
	return rec
}

// GetStale 忽略有效期读取记录，仅用于网络失败时的兜底
func (c *Cache) GetStale(ctx context.Context, studentID string) *Record {
	return c.load(ctx, studentID)
}

// Set 写入记录并覆盖旧值；失败只记录日志
func (c *Cache) Set(ctx context.Context, studentID string, payload json.RawMessage) {
	now := c.now()
	rec := Record{
		StudentID: studentID,
		Data:      payload,
		Timestamp: now.UnixMilli(),
		Expiry:    now.Add(c.ttl).UnixMilli(),
	}

	b, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("缓存记录序列化失败", zap.String("student_id", studentID), zap.Error(err))
		return
	}
	if err := c.store.Put(ctx, KeyPrefix+studentID, b); err != nil {
		c.logger.Warn("缓存写入失败", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (c *Cache) load(ctx context.Context, studentID string) *Record {
	b, err := c.store.Get(ctx, KeyPrefix+studentID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("缓存读取失败", zap.String("student_id", studentID), zap.Error(err))
		}
		return nil
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		c.logger.Warn("缓存记录反序列化失败", zap.String("student_id", studentID), zap.Error(err))
		return nil
	}
	return &rec
}
