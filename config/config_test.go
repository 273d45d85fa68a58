package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
db:
  driver: sqlite
  sqlite_path: /tmp/washman.db
scheduler:
  timezone: UTC
  schedule_cache_ttl: 10s
  auto_assign:
    enabled: true
    cron: "0 18 * * 5"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/washman.db", cfg.Database.SQLitePath)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.ScheduleCacheTTL)
	// 未配置项回落到默认值
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RulesCacheTTL)
	assert.Equal(t, 21, cfg.Scheduler.BiWeeklyUnknownAfterDays)
	assert.Equal(t, 1, cfg.Scheduler.AutoAssign.WeekOffset)
	assert.Equal(t, 10, cfg.Scheduler.RateLimit.Requests)
	assert.True(t, cfg.Scheduler.AutoAssign.Enabled)
	assert.Equal(t, "0 18 * * 5", cfg.Scheduler.AutoAssign.Cron)

	loc, err := cfg.Scheduler.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("WASHMAN_SERVER_PORT", "9100")
	t.Setenv("WASHMAN_REDIS_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "postgres"},
			Scheduler: SchedulerConfig{
				Timezone:                 "Asia/Dubai",
				ScheduleCacheTTL:         30 * time.Second,
				RulesCacheTTL:            5 * time.Minute,
				BiWeeklyUnknownAfterDays: 21,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"未知驱动", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"缓存 TTL 为 0", func(c *Config) { c.Scheduler.RulesCacheTTL = 0 }, true},
		{"双周阈值为 0", func(c *Config) { c.Scheduler.BiWeeklyUnknownAfterDays = 0 }, true},
		{"无效时区", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, true},
		{"启用自动排班但缺少 cron", func(c *Config) { c.Scheduler.AutoAssign.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "washman", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=washman sslmode=disable TimeZone=UTC", c.DSN())
}
