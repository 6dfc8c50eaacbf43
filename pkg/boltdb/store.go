// Package boltdb 基于 bbolt 的本地文件键值存储，作为单机部署的默认缓存载体。
package boltdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"schedule-viewer/internal/cache"
)

var bucketName = []byte("ScheduleCache")

// Store bbolt 存储，实现 cache.Store
type Store struct {
	db *bbolt.DB
}

// Open 打开（或创建）数据库文件
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("打开 bbolt 数据库失败: %w", err)
	}
	return &Store{db: db}, nil
}

// Init 创建 bucket，可重复调用
func (s *Store) Init(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
}

// Get 读取值；bucket 或键不存在时返回 cache.ErrNotFound
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return cache.ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return cache.ErrNotFound
		}
		// bbolt 返回的切片只在事务内有效
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	return out, err
}

// Put 写入值
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

// Close 关闭数据库文件
func (s *Store) Close() error {
	return s.db.Close()
}
