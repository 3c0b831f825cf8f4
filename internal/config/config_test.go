package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
storage:
  driver: memory
jwt:
  secret: test-secret
http:
  port: 8080
scheduler:
  enabled: true
  check_interval: 15m
gamification:
  base_reward: 10
  bonus_per_streak_day: 1
  max_streak_bonus: 20
`

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.True(t, cfg.IsMemory())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.CheckInterval)

	policy := cfg.Gamification.Policy()
	assert.Equal(t, int64(10), policy.BaseReward)
	assert.Len(t, policy.LevelThresholds, 50)
	assert.Equal(t, int64(100), policy.LevelThresholds[1])
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_HOST", "db.internal")

	cfg, err := LoadFile(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadFile_Expand(t *testing.T) {
	t.Setenv("SPARKOS_TEST_SECRET", "from-env")

	cfg, err := LoadFile(writeConfig(t, `
storage:
  driver: memory
jwt:
  secret: ${SPARKOS_TEST_SECRET:fallback}
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "storage:\n  driver: mongo\njwt:\n  secret: x\n"},
		{"missing secret", "storage:\n  driver: memory\n"},
		{"descending thresholds", "storage:\n  driver: memory\njwt:\n  secret: x\ngamification:\n  level_thresholds: [0, 50, 40]\n"},
		{"scheduler without interval", "storage:\n  driver: memory\njwt:\n  secret: x\nscheduler:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.GetDSN())
}

func TestBaseYAML(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	cfg, err := LoadFile(filepath.Join("..", "..", "config", "base.yaml"))
	require.NoError(t, err)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "habit-events", cfg.Kafka.Topic)
	assert.NoError(t, cfg.Gamification.Policy().Validate())
}
