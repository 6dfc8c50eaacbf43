package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"schedule-viewer/internal/cache"
)

// ── Mock ScheduleFetcher ──

type mockFetcher struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     map[string]int
	// gate 非空时，请求阻塞到 gate 关闭
	gate chan struct{}
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		responses: make(map[string]json.RawMessage),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (m *mockFetcher) FetchSchedule(ctx context.Context, studentID string) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls[studentID]++
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[studentID]; ok {
		return nil, err
	}
	if raw, ok := m.responses[studentID]; ok {
		return raw, nil
	}
	return nil, fmt.Errorf("unexpected student %s", studentID)
}

func (m *mockFetcher) setResponse(studentID string, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, studentID)
	m.responses[studentID] = json.RawMessage(raw)
}

func (m *mockFetcher) setError(studentID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[studentID] = err
}

func (m *mockFetcher) callCount(studentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[studentID]
}

// ── Mock Fetcher（Session 用）──

type fetchCall struct {
	studentID string
	release   chan struct{}
	result    *FetchResult
	err       error
}

// scriptedFetcher 每次调用阻塞到测试显式放行，用于构造乱序返回
type scriptedFetcher struct {
	calls chan *fetchCall
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan *fetchCall, 8)}
}

func (f *scriptedFetcher) Fetch(_ context.Context, studentID string, _ bool) (*FetchResult, error) {
	call := &fetchCall{studentID: studentID, release: make(chan struct{})}
	f.calls <- call
	<-call.release
	return call.result, call.err
}

// ── Mock Store ──

type failingStore struct{}

func (failingStore) Init(context.Context) error { return fmt.Errorf("store down") }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("store down")
}

func (failingStore) Put(context.Context, string, []byte) error { return fmt.Errorf("store down") }

// countingStore 记录写入次数
type countingStore struct {
	*cache.MemoryStore
	mu   sync.Mutex
	puts int
}

func (s *countingStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.MemoryStore.Put(ctx, key, value)
}

func (s *countingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// ── 测试数据 ──

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ cache.Store = failingStore{}
