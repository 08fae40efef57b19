package bridge

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/scriptsdk/pkg/bridge/config"
	"go.minekube.com/scriptsdk/pkg/edition/bedrock/ping"
	"go.minekube.com/scriptsdk/pkg/sdk"
	"go.minekube.com/scriptsdk/pkg/system"
)

// startServer serves h on a random local port and returns the websocket url.
func startServer(t *testing.T, h *Handler) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.DefaultConfig
	s := NewServer(cfg, h)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return s, "ws://" + ln.Addr().String() + cfg.Path
}

func TestServer_EndToEnd(t *testing.T) {
	p := newTestPlayer()
	pinger := ping.PingerFunc(func(context.Context, string, int) (*ping.Status, error) {
		return &ping.Status{Edition: ping.EditionPocket, Name: "Srv", Version: "1.21.0", Max: 20, ServerID: 7}, nil
	})
	h := newTestHandler(t, HandlerOptions{Host: newTestHost(p), Pinger: pinger})
	s, url := startServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := sdk.Dial(ctx, url, sdk.ClientOptions{})
	require.NoError(t, err)
	defer client.Close()

	assert.Eventually(t, func() bool { return s.Sessions() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, s.Listening())

	res, err := sdk.Call(ctx, client, "getPlayerXuid", []string{p.name})
	require.NoError(t, err)
	assert.Equal(t, "2535", res.First())

	_, err = sdk.Call(ctx, client, "getPlayerXuid", []string{"nobody"})
	assert.True(t, sdk.IsNotFound(err))
	assert.EqualError(t, err, "[ScriptSDK] player not found")

	info, err := system.New(client).InfoFromExternalServer(ctx, "localhost", 19132)
	require.NoError(t, err)
	assert.Equal(t, "Srv", info.Name)
	assert.Equal(t, 20, info.Players.Max)
	assert.Equal(t, int64(7), info.ServerID)

	// Malformed frames are dropped without closing the session.
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{nope")))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"id":"x","action":"getPlayerOS","body":"`+p.name+`"}`)))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","success":true,"result":["Android"],"code":200}`, string(data))
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func TestServer_ConcurrentRequests(t *testing.T) {
	block := make(chan struct{})
	pinger := ping.PingerFunc(func(ctx context.Context, host string, _ int) (*ping.Status, error) {
		<-block
		return &ping.Status{Name: host}, nil
	})
	cfg := config.DefaultConfig
	cfg.Ping.CacheTTL = 0
	h := newTestHandler(t, HandlerOptions{Host: newTestHost(), Pinger: pinger, Config: &cfg})
	_, url := startServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := sdk.Dial(ctx, url, sdk.ClientOptions{})
	require.NoError(t, err)
	defer client.Close()

	// A slow ping does not hold back other requests on the same session.
	slow := make(chan error, 1)
	go func() {
		_, err := system.New(client).InfoFromExternalServer(ctx, "slow.example.com", 19132)
		slow <- err
	}()
	_, err = sdk.Call(ctx, client, "getPlayerIp", []string{"nobody"})
	assert.True(t, sdk.IsNotFound(err))

	close(block)
	require.NoError(t, <-slow)
}
