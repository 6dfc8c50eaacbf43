package service

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ── 会话错误 ──

var (
	// ErrSuperseded 请求返回时已有更新的选择，结果被丢弃
	ErrSuperseded = errors.New("请求已被新的查询取代")
	// ErrNoSelection 尚未选择学号时重试
	ErrNoSelection = errors.New("尚未选择学号")
)

// Fetcher Session 依赖的加载能力
type Fetcher interface {
	Fetch(ctx context.Context, studentID string, useCache bool) (*FetchResult, error)
}

// Session 单个使用者的加载状态机
//
// 每次 Load 递增序号并记录当前学号；返回时序号已变化的结果会被丢弃，
// 慢请求不会覆盖后发起的查询。
type Session struct {
	fetcher Fetcher

	mu        sync.Mutex
	seq       uint64
	activeKey string
	state     FetchState
	current   *FetchResult
	lastErr   error
}

// NewSession 创建空闲状态的会话
func NewSession(f Fetcher) *Session {
	return &Session{fetcher: f, state: StateIdle}
}

// Load 切换到 studentID 并加载
func (s *Session) Load(ctx context.Context, studentID string, useCache bool) (*FetchResult, error) {
	studentID = strings.TrimSpace(studentID)

	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.activeKey = studentID
	s.state = StateLoading
	s.lastErr = nil
	s.mu.Unlock()

	res, err := s.fetcher.Fetch(ctx, studentID, useCache)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		s.state = StateError
		s.lastErr = err
		return res, err
	}
	s.state = res.State
	s.current = res
	return res, nil
}

// Retry 跳过缓存重新加载当前学号
func (s *Session) Retry(ctx context.Context) (*FetchResult, error) {
	key := s.ActiveKey()
	if key == "" {
		return nil, ErrNoSelection
	}
	return s.Load(ctx, key, false)
}

// Reset 回到空闲状态，进行中的请求结果将被丢弃
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.activeKey = ""
	s.state = StateIdle
	s.current = nil
	s.lastErr = nil
}

// State 当前状态
func (s *Session) State() FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveKey 当前学号
func (s *Session) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey
}

// Current 最近一次被接受的结果
func (s *Session) Current() *FetchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Err 最近一次失败原因
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
