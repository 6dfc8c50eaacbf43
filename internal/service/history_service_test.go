package service

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"schedule-viewer/internal/cache"
)

// ── 测试辅助 ──

func setupTestHistoryService() (HistoryService, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return NewHistoryService(store, zap.NewNop()), store
}

// ── Add / List 测试 ──

func TestHistoryService_AddMovesToFront(t *testing.T) {
	svc, _ := setupTestHistoryService()
	ctx := context.Background()

	svc.Add(ctx, "S001")
	svc.Add(ctx, "S002")
	got := svc.Add(ctx, " S001 ")

	want := []string{"S001", "S002"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
	if list := svc.List(ctx); !reflect.DeepEqual(list, want) {
		t.Errorf("List 期望 %v，实际 %v", want, list)
	}
}

func TestHistoryService_MaxEntries(t *testing.T) {
	svc, _ := setupTestHistoryService()
	ctx := context.Background()

	for i := 1; i <= MaxHistory+3; i++ {
		svc.Add(ctx, fmt.Sprintf("S%03d", i))
	}

	list := svc.List(ctx)
	if len(list) != MaxHistory {
		t.Fatalf("期望最多 %d 条，实际 %d", MaxHistory, len(list))
	}
	if list[0] != "S013" {
		t.Errorf("最新学号应在最前，实际 %s", list[0])
	}
	if list[MaxHistory-1] != "S004" {
		t.Errorf("最旧的 3 条应被丢弃，实际末尾 %s", list[MaxHistory-1])
	}
}

func TestHistoryService_AddEmptyIgnored(t *testing.T) {
	svc, _ := setupTestHistoryService()

	if got := svc.Add(context.Background(), "  "); len(got) != 0 {
		t.Errorf("空学号不应写入，实际 %v", got)
	}
}

// ── Remove 测试 ──

func TestHistoryService_Remove(t *testing.T) {
	svc, _ := setupTestHistoryService()
	ctx := context.Background()

	svc.Add(ctx, "S001")
	svc.Add(ctx, "S002")
	got := svc.Remove(ctx, "S001")

	if !reflect.DeepEqual(got, []string{"S002"}) {
		t.Errorf("期望 [S002]，实际 %v", got)
	}
	if got := svc.Remove(ctx, "S999"); !reflect.DeepEqual(got, []string{"S002"}) {
		t.Errorf("删除不存在的学号不应影响历史，实际 %v", got)
	}
}

// ── 存储异常 ──

func TestHistoryService_StoreFailure(t *testing.T) {
	svc := NewHistoryService(failingStore{}, zap.NewNop())
	ctx := context.Background()

	if list := svc.List(ctx); list == nil || len(list) != 0 {
		t.Errorf("存储不可用时应返回空列表，实际 %v", list)
	}
	if got := svc.Add(ctx, "S001"); !reflect.DeepEqual(got, []string{"S001"}) {
		t.Errorf("写入失败时仍返回本次结果，实际 %v", got)
	}
}

func TestHistoryService_CorruptData(t *testing.T) {
	svc, store := setupTestHistoryService()
	ctx := context.Background()
	_ = store.Put(ctx, HistoryKey, []byte("not-json"))

	if list := svc.List(ctx); len(list) != 0 {
		t.Errorf("损坏数据应视为空，实际 %v", list)
	}
	if got := svc.Add(ctx, "S001"); !reflect.DeepEqual(got, []string{"S001"}) {
		t.Errorf("期望覆盖损坏数据，实际 %v", got)
	}
}
