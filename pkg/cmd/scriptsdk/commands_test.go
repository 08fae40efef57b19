package scriptsdk

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"go.minekube.com/scriptsdk/pkg/bridge/config"
	"go.minekube.com/scriptsdk/pkg/edition/bedrock/ping"
)

func TestConfigCommand(t *testing.T) {
	app := App()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run([]string{"scriptsdk", "config"}))
	assert.Equal(t, config.DefaultBytes, out.Bytes())
}

func TestServe_MissingConfig(t *testing.T) {
	app := App()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{"scriptsdk", "--config", filepath.Join(t.TempDir(), "absent.yml"), "serve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is missing")
}

func TestServe_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("path: rpc\n"), 0644))

	app := App()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{"scriptsdk", "-c", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestSplitAddr(t *testing.T) {
	host, port, err := splitAddr("play.example.com")
	require.NoError(t, err)
	assert.Equal(t, "play.example.com", host)
	assert.Equal(t, DefaultBedrockPort, port)

	host, port, err = splitAddr("127.0.0.1:19133")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 19133, port)

	_, _, err = splitAddr("localhost:0")
	assert.Error(t, err)
}

func TestPingAll(t *testing.T) {
	pinger := ping.PingerFunc(func(ctx context.Context, host string, port int) (*ping.Status, error) {
		if host == "down" {
			return nil, errors.New("timeout")
		}
		_, ok := ctx.Deadline()
		assert.True(t, ok, "ping should have a deadline")
		return &ping.Status{Name: host, Max: port}, nil
	})
	results := pingAll(context.Background(), pinger, []string{"a:1", "down", "b"}, time.Second)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].status.Name)
	assert.Equal(t, 1, results[0].status.Max)
	assert.Error(t, results[1].err)
	assert.Equal(t, "down", results[1].addr)
	assert.Equal(t, DefaultBedrockPort, results[2].status.Max)
}
