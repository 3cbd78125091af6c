package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 0, cfg.Transaction.MaxRetries)
	assert.Equal(t, time.Second, cfg.Transaction.RetryBackoff)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.OrderTTL)
	assert.Equal(t, 10*time.Second, cfg.Cache.ActiveOrderTTL)
	assert.False(t, cfg.MQ.Enabled)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
transaction:
  max_retries: 2
  retry_backoff: 250ms
database:
  driver: sqlite
  sqlite_path: /tmp/test.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("BOOKSTORE_TRANSACTION_MAX_RETRIES", "5")
	t.Setenv("BOOKSTORE_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Transaction.MaxRetries, "环境变量优先于配置文件")
	assert.Equal(t, 250*time.Millisecond, cfg.Transaction.RetryBackoff)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Setenv("BOOKSTORE_TRANSACTION_MAX_RETRIES", "-1")
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:      ServerConfig{Port: 8080},
		Database:    DatabaseConfig{Driver: "postgres"},
		Transaction: TransactionConfig{RetryBackoff: time.Second},
	}
	assert.Error(t, validate(cfg))

	cfg.Database.Driver = "mysql"
	assert.NoError(t, validate(cfg))

	cfg.Transaction.RetryBackoff = 0
	assert.Error(t, validate(cfg))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		User: "root", Password: "pw", Host: "db", Port: 3306, DBName: "bookorder",
		Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t,
		"root:pw@tcp(db:3306)/bookorder?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai&clientFoundRows=true",
		d.DSN())
}
