package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meander-Cloud/go-probe/config"
)

func execute(args ...string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestRootCommandRejectsBadArgs(t *testing.T) {
	assert.Error(t, execute())
	assert.Error(t, execute("localhost"))
	assert.Error(t, execute("localhost", "25565", "extra"))
	assert.Error(t, execute("localhost", "not-a-port"))
	assert.Error(t, execute("localhost", "65536"))
	assert.Error(t, execute("localhost", "-1"))
}

func TestRootCommandHasNoProtocolVersionFlag(t *testing.T) {
	assert.Nil(t, newRootCommand().Flags().Lookup("protocol-version"))
	assert.Error(t, execute("--protocol-version", "47", "localhost", "25565"))
}

func TestFlagsOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	t.Setenv(config.EnvDuration, "1h")
	t.Setenv(config.EnvReportInterval, "1m")
	t.Setenv(config.EnvQueueLength, "8")
	t.Setenv(config.EnvDebug, "false")

	cmd, f := newCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--duration", "30s", "--queue-length", "16", "--debug"}))

	c := &config.Config{Hostname: "localhost", Port: 25565, LogPrefix: t.Name()}
	require.NoError(t, config.LoadEnv(path, c))
	assert.Equal(t, time.Hour, c.Duration)
	assert.Equal(t, uint16(8), c.QueueLength)
	assert.False(t, c.LogDebug)

	f.apply(cmd, c)

	assert.Equal(t, 30*time.Second, c.Duration)
	assert.Equal(t, uint16(16), c.QueueLength)
	assert.True(t, c.LogDebug)
	// untouched flags keep env values
	assert.Equal(t, time.Minute, c.ReportInterval)
	assert.Equal(t, config.TcpDialTimeout, c.GetTcpDialTimeout())
}
