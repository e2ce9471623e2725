package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
storage:
  driver: sql
  database:
    driver: postgres
    host: db
    user: ledger
    dbname: accounts
    conn_max_lifetime: 5m
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`)
	cfg, err := Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)

	assert.Equal(t, ":50051", cfg.Server.GRPCAddr)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, StorageSQL, cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Storage.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Storage.Database.ConnMaxLifetime)
	assert.Equal(t, SequenceStore, cfg.Sequence.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "ledger.events", cfg.Kafka.Topic)
	assert.Equal(t, 2*time.Second, cfg.Kafka.PublishTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
storage:
  driver: memory
log:
  level: info
`)
	t.Setenv("LEDGER_STORAGE_DRIVER", "sql")
	t.Setenv("LEDGER_DB_DRIVER", "sqlite")
	t.Setenv("LEDGER_DB_PATH", "/tmp/ledger.db")
	t.Setenv("LEDGER_LOG_LEVEL", "debug")
	t.Setenv("LEDGER_KAFKA_BROKERS", "a:1,b:2")

	cfg, err := Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)
	assert.Equal(t, StorageSQL, cfg.Storage.Driver)
	assert.Equal(t, "sqlite", cfg.Storage.Database.Driver)
	assert.Equal(t, "/tmp/ledger.db", cfg.Storage.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
}

func TestDotEnvFile(t *testing.T) {
	env := writeFile(t, "test.env", "LEDGER_SEQUENCE_DRIVER=redis\nLEDGER_REDIS_ADDR=cache:6379\n")
	t.Cleanup(func() {
		os.Unsetenv("LEDGER_SEQUENCE_DRIVER")
		os.Unsetenv("LEDGER_REDIS_ADDR")
	})

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, SequenceRedis, cfg.Sequence.Driver)
	assert.Equal(t, "cache:6379", cfg.Sequence.Redis.Addr)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	empty := writeFile(t, "empty.env", "")

	t.Setenv("LEDGER_STORAGE_DRIVER", "mongo")
	_, err := Load("", empty)
	assert.ErrorContains(t, err, "unknown storage driver")

	t.Setenv("LEDGER_STORAGE_DRIVER", "lmax")
	t.Setenv("LEDGER_SEQUENCE_DRIVER", "etcd")
	_, err = Load("", empty)
	assert.ErrorContains(t, err, "unknown sequence driver")

	t.Setenv("LEDGER_SEQUENCE_DRIVER", "store")
	t.Setenv("LEDGER_KAFKA_ENABLED", "true")
	_, err = Load("", empty)
	assert.ErrorContains(t, err, "kafka enabled without brokers")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), empty)
	assert.Error(t, err)
}
