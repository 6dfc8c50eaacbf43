package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"schedule-viewer/internal/cache"
)

const (
	// HistoryKey 查询历史在存储中的键
	HistoryKey = "history:student_ids"
	// MaxHistory 最多保留的学号数
	MaxHistory = 10
)

// HistoryService 最近查询学号
//
// 与课表缓存共用同一个 Store；读写失败只记录日志，历史视为空。
type HistoryService interface {
	// List 按最近使用排序
	List(ctx context.Context) []string
	// Add 将学号移到最前，超出上限的旧记录被丢弃
	Add(ctx context.Context, studentID string) []string
	// Remove 删除学号
	Remove(ctx context.Context, studentID string) []string
}

type historyService struct {
	store  cache.Store
	mu     sync.Mutex
	logger *zap.Logger
}

// NewHistoryService 创建 HistoryService 实例
func NewHistoryService(store cache.Store, logger *zap.Logger) HistoryService {
	return &historyService{store: store, logger: logger}
}

func (s *historyService) List(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *historyService) Add(ctx context.Context, studentID string) []string {
	studentID = strings.TrimSpace(studentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load(ctx)
	if studentID == "" {
		return ids
	}

	next := make([]string, 0, MaxHistory)
	next = append(next, studentID)
	for _, id := range ids {
		if id != studentID && len(next) < MaxHistory {
			next = append(next, id)
		}
	}
	s.save(ctx, next)
	return next
}

func (s *historyService) Remove(ctx context.Context, studentID string) []string {
	studentID = strings.TrimSpace(studentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load(ctx)
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != studentID {
			next = append(next, id)
		}
	}
	if len(next) != len(ids) {
		s.save(ctx, next)
	}
	return next
}

func (s *historyService) load(ctx context.Context) []string {
	b, err := s.store.Get(ctx, HistoryKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("读取查询历史失败", zap.Error(err))
		}
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		s.logger.Warn("查询历史格式错误，已忽略", zap.Error(err))
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	if len(ids) > MaxHistory {
		ids = ids[:MaxHistory]
	}
	return ids
}

func (s *historyService) save(ctx context.Context, ids []string) {
	b, err := json.Marshal(ids)
	if err != nil {
		s.logger.Warn("查询历史序列化失败", zap.Error(err))
		return
	}
	if err := s.store.Put(ctx, HistoryKey, b); err != nil {
		s.logger.Warn("保存查询历史失败", zap.Error(err))
	}
}
