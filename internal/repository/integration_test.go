//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schedule-viewer/internal/cache"
	"schedule-viewer/internal/repository"
	"schedule-viewer/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=schedule_viewer_test sslmode=disable TimeZone=Asia/Ho_Chi_Minh"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := database.Migrate(testDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testDB.Exec("TRUNCATE schedule_cache")
	os.Exit(code)
}

// ═══════════════════════════════════════════════════════════
// CacheEntryRepository
// ═══════════════════════════════════════════════════════════

func TestCacheEntryRepo_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCacheEntryRepo(testDB)

	if err := repo.Init(ctx); err != nil {
		t.Fatalf("Init 应成功: %v", err)
	}

	key := fmt.Sprintf("it:%d", time.Now().UnixNano())
	if _, err := repo.Get(ctx, key); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}

	if err := repo.Put(ctx, key, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Put(ctx, key, []byte("v2")); err != nil {
		t.Fatalf("重复写入应 upsert: %v", err)
	}
	got, err := repo.Get(ctx, key)
	if err != nil || string(got) != "v2" {
		t.Errorf("期望 v2，实际: %q, %v", got, err)
	}
}

func TestCacheEntryRepo_WithCache(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCacheEntryRepo(testDB)

	now := time.Now()
	c := cache.New(repo, zap.NewNop(), cache.WithTTL(time.Minute), cache.WithClock(func() time.Time { return now }))
	c.Init(ctx)

	c.Set(ctx, "S900", []byte(`{"data":[]}`))
	if c.Get(ctx, "S900") == nil {
		t.Fatal("应命中")
	}
	now = now.Add(2 * time.Minute)
	if c.Get(ctx, "S900") != nil {
		t.Error("过期后不应命中")
	}
	if c.GetStale(ctx, "S900") == nil {
		t.Error("过期记录仍应可兜底读取")
	}
}

func TestMigrate_AlreadyUpToDate(t *testing.T) {
	if err := database.Migrate(testDB, zap.NewNop()); err != nil {
		t.Fatalf("重复迁移应直接返回，实际: %v", err)
	}
	if !testDB.Migrator().HasTable("schedule_cache") {
		t.Error("期望 schedule_cache 表存在")
	}
}
