package system

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/scriptsdk/pkg/sdk"
)

type sent struct {
	command string
	args    []string
	opts    sdk.SendOptions
}

func capture(res *sdk.Result) (*sent, sdk.Sender) {
	s := &sent{}
	return s, sdk.SenderFunc(func(_ context.Context, command string, args []string, opts ...sdk.SendOption) (*sdk.Result, error) {
		s.command, s.args, s.opts = command, args, sdk.ResolveOptions(opts...)
		return res, nil
	})
}

func TestInfoFromExternalServer(t *testing.T) {
	got, sender := capture(&sdk.Result{Success: true, Code: 200,
		Result: []string{"42", "education", "survival", "Map", "Srv", "5", "20", "7", "1.20"}})

	info, err := New(sender).InfoFromExternalServer(context.Background(), "play.example.com", 19132)
	require.NoError(t, err)
	assert.Equal(t, &ServerInfo{
		Ping:     42,
		Edition:  "education",
		GameMode: "survival",
		MapName:  "Map",
		Name:     "Srv",
		Players:  Players{Online: 5, Max: 20},
		ServerID: 7,
		Version:  "1.20",
	}, info)

	assert.Equal(t, CmdExternalServerInfo, got.command)
	assert.Equal(t, []string{"play.example.com", "19132"}, got.args)
	assert.Equal(t, ExternalServerInfoTimeout, got.opts.Timeout)
	assert.Equal(t, []string{"42", "education", "survival", "Map", "Srv", "5", "20", "7", "1.20"}, info.Fields())
}

func TestInfoFromExternalServer_Errors(t *testing.T) {
	_, sender := capture(&sdk.Result{Code: 500, Result: []string{"timed out"}})
	_, err := New(sender).InfoFromExternalServer(context.Background(), "localhost", 19132)
	require.Error(t, err)
	assert.Equal(t, "[ScriptSDK] timed out", err.Error())

	_, sender = capture(&sdk.Result{Success: true, Result: []string{"42", "MCPE"}})
	_, err = New(sender).InfoFromExternalServer(context.Background(), "localhost", 19132)
	require.Error(t, err)

	_, err = ParseServerInfo([]string{"x", "MCPE", "Survival", "Map", "Srv", "5", "20", "7", "1.20"})
	require.Error(t, err)

	_, err = ParseServerInfo([]string{"1", "MCPE", "Survival", "Map", "Srv", "5", "20", "guid", "1.20"})
	assert.EqualError(t, err, `[ScriptSDK] invalid server id "guid"`)

	// System failures are generic, a not-found reply included.
	_, sender = capture(&sdk.Result{Code: sdk.CodeNotFound, Result: []string{"unknown host"}})
	_, err = New(sender).InfoFromExternalServer(context.Background(), "localhost", 19132)
	require.Error(t, err)
	assert.False(t, sdk.IsNotFound(err))
	var sdkErr *sdk.Error
	require.ErrorAs(t, err, &sdkErr)
	assert.Equal(t, sdk.CodeNotFound, sdkErr.Code)
	assert.Equal(t, "[ScriptSDK] unknown host", err.Error())
}

func TestParseServerInfo_SignedServerID(t *testing.T) {
	fields := []string{"42", "MCPE", "Survival", "Map", "Nukkit", "3", "50", "-6412364829016405016", "1.18.30"}
	info, err := ParseServerInfo(fields)
	require.NoError(t, err)
	assert.Equal(t, int64(-6412364829016405016), info.ServerID)
	assert.Equal(t, fields, info.Fields())

	info, err = ParseServerInfo([]string{"42", "MCPE", "Survival", "Map", "BDS", "3", "50", "13253860892328930865", "1.21"})
	require.NoError(t, err)
	assert.Equal(t, int64(-5192883181380620751), info.ServerID)
}

func TestSendDiscordMessage(t *testing.T) {
	got, sender := capture(&sdk.Result{Success: true, Code: 200, Result: []string{"204"}})
	s := New(sender)
	ctx := context.Background()

	require.NoError(t, s.SendDiscordMessage(ctx, "123/abc", "hello", nil))
	assert.Equal(t, CmdDiscordMessage, got.command)
	assert.Equal(t, []string{"123/abc", "hello", "", "", "", ""}, got.args)

	replied := false
	require.NoError(t, s.SendDiscordMessage(ctx, "123/abc", "hello", &MessageOptions{
		Username:        "Bot",
		TTS:             true,
		AllowedMentions: &AllowedMentions{Parse: []string{"users"}, RepliedUser: &replied},
	}))
	assert.Equal(t, []string{"123/abc", "hello", "Bot", "", "true",
		`{"parse":["users"],"replied_user":false}`}, got.args)
}

func TestSendDiscordEmbed(t *testing.T) {
	got, sender := capture(&sdk.Result{Success: true, Code: 200})
	s := New(sender)

	err := s.SendDiscordEmbed(context.Background(), "https://discord.com/api/webhooks/1/a",
		[]Embed{{"title": "Server started"}},
		&EmbedOptions{Content: "hi", MessageOptions: MessageOptions{AvatarURL: "https://a/b.png"}})
	require.NoError(t, err)
	assert.Equal(t, CmdDiscordEmbed, got.command)
	require.Len(t, got.args, 7)
	assert.JSONEq(t, `[{"title":"Server started"}]`, got.args[1])
	assert.Equal(t, []string{"hi", "", "https://a/b.png", "", ""}, got.args[2:])

	require.NoError(t, s.SendDiscordEmbed(context.Background(), "1/a", nil, nil))
	assert.Equal(t, []string{"1/a", "[]", "", "", "", "", ""}, got.args)
}

func TestSendDiscordPayload(t *testing.T) {
	got, sender := capture(&sdk.Result{Code: 400, Result: []string{"invalid body"}})
	err := New(sender).SendDiscordPayload(context.Background(), "1/a", map[string]any{"content": "x"})
	require.Error(t, err)
	assert.Equal(t, "[ScriptSDK] invalid body", err.Error())
	assert.Equal(t, CmdDiscordPayload, got.command)

	_, sender = capture(&sdk.Result{Code: sdk.CodeNotFound, Result: []string{"webhook not found"}})
	err = New(sender).SendDiscordPayload(context.Background(), "1/a", map[string]any{})
	require.Error(t, err)
	assert.False(t, sdk.IsNotFound(err))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.args[1]), &payload))
	assert.Equal(t, "x", payload["content"])
}
