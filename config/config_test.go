package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望 port=8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Cache.Driver != "bolt" {
		t.Errorf("期望 driver=bolt，实际=%s", cfg.Cache.Driver)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("期望 ttl=30m，实际=%s", cfg.Cache.TTL)
	}
	if cfg.Upstream.PageSize != 50 {
		t.Errorf("期望 page_size=50，实际=%d", cfg.Upstream.PageSize)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9090\ncache:\n  driver: memory\n  ttl: 5m\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LICHHOC_UPSTREAM_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Cache.Driver != "memory" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("缓存配置未生效: %+v", cfg.Cache)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Errorf("环境变量未覆盖 timeout: %s", cfg.Upstream.Timeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Upstream: UpstreamConfig{Endpoint: "http://x", Timeout: time.Second},
			Cache:    CacheConfig{Driver: "memory", TTL: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"超时为0", func(c *Config) { c.Upstream.Timeout = 0 }, true},
		{"TTL为0", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"未知驱动", func(c *Config) { c.Cache.Driver = "mongo" }, true},
		{"bolt 缺路径", func(c *Config) { c.Cache.Driver = "bolt" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("期望 wantErr=%v，实际 err=%v", tt.wantErr, err)
			}
		})
	}
}

func TestUpstreamLocation_Fallback(t *testing.T) {
	c := UpstreamConfig{Timezone: "Not/AZone"}
	loc := c.Location()
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 7*3600 {
		t.Errorf("期望回退到 UTC+7，实际偏移=%d", offset)
	}
}
