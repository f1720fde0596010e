package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       *Config
		wantErr bool
	}{
		{"nil config", nil, true},
		{"empty hostname", &Config{Port: 25565}, true},
		{"hostname too long", &Config{Hostname: string(make([]byte, 256)), Port: 25565}, true},
		{"port zero accepted", &Config{Hostname: "localhost", Port: 0}, false},
		{"negative duration", &Config{Hostname: "localhost", Duration: -time.Second}, true},
		{"negative report interval", &Config{Hostname: "localhost", ReportInterval: -time.Second}, true},
		{"valid", &Config{Hostname: "mc.example.com", Port: 25565, Duration: time.Minute}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	c := &Config{Hostname: "localhost"}

	assert.Equal(t, uint16(1000), c.GetQueueLength())
	assert.Equal(t, EventChannelLength, c.GetEventChannelLength())
	assert.Equal(t, TcpDialTimeout, c.GetTcpDialTimeout())
	assert.Equal(t, TcpWriteDeadline, c.GetTcpWriteDeadline())
	assert.Equal(t, ReportInterval, c.GetReportInterval())

	c.QueueLength = 8
	assert.Equal(t, uint16(8), c.GetQueueLength())
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "localhost:25565", (&Config{Hostname: "localhost", Port: 25565}).Address())
	assert.Equal(t, "[::1]:0", (&Config{Hostname: "::1"}).Address())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.env")
	content := "PROBE_DURATION=90s\n" +
		"PROBE_REPORT_INTERVAL=2s\n" +
		"PROBE_REPORT_PATH=/tmp/report.msgpack\n" +
		"PROBE_QUEUE_LENGTH=64\n" +
		"PROBE_DEBUG=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides existing variables, t.Setenv restores them afterwards
	for _, key := range []string{EnvDuration, EnvReportInterval, EnvReportPath, EnvQueueLength, EnvDebug} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	c := &Config{Hostname: "localhost"}
	require.NoError(t, LoadEnv(path, c))

	assert.Equal(t, 90*time.Second, c.Duration)
	assert.Equal(t, 2*time.Second, c.ReportInterval)
	assert.Equal(t, "/tmp/report.msgpack", c.ReportPath)
	assert.Equal(t, uint16(64), c.QueueLength)
	assert.True(t, c.LogDebug)
}

func TestLoadEnvMissingExplicitFile(t *testing.T) {
	c := &Config{Hostname: "localhost"}
	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), c))
}

func TestLoadEnvInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv(EnvDuration, "soon")

	c := &Config{Hostname: "localhost"}
	assert.Error(t, LoadEnv(path, c))
}
