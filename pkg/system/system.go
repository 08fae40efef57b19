// Package system provides the process-wide helpers of the ScriptSDK:
// external server info lookups and Discord webhook relaying.
package system

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.minekube.com/scriptsdk/pkg/sdk"
)

// Remote system commands.
const (
	CmdExternalServerInfo = "getExternalServerInfo"
	CmdDiscordMessage     = "discordSendMessage"
	CmdDiscordEmbed       = "discordSendEmbed"
	CmdDiscordPayload     = "discordSendPayload"
)

// ExternalServerInfoTimeout is the timeout of InfoFromExternalServer.
// Pinging a remote server takes longer than a local call.
const ExternalServerInfoTimeout = 9 * time.Second

// System sends system level commands to the bridge.
type System struct {
	sender sdk.Sender
}

// New returns a new System sending its calls through sender.
func New(sender sdk.Sender) *System {
	return &System{sender: sender}
}

// call sends command like sdk.Call but reports every remote failure,
// including not-found replies, as a generic *sdk.Error.
func (s *System) call(ctx context.Context, command string, args []string, opts ...sdk.SendOption) (*sdk.Result, error) {
	res, err := sdk.Call(ctx, s.sender, command, args, opts...)
	var nf *sdk.NotFoundError
	if errors.As(err, &nf) {
		return res, &sdk.Error{Msg: nf.Msg, Code: sdk.CodeNotFound}
	}
	return res, err
}

// ServerInfo is the status of an external server.
type ServerInfo struct {
	Ping     int     `json:"ping" yaml:"ping"`
	Edition  string  `json:"edition" yaml:"edition"`
	GameMode string  `json:"gameMode" yaml:"gameMode"`
	MapName  string  `json:"mapName" yaml:"mapName"`
	Name     string  `json:"name" yaml:"name"`
	Players  Players `json:"players" yaml:"players"`
	ServerID int64   `json:"serverId" yaml:"serverId"`
	Version  string  `json:"version" yaml:"version"`
}

// Players is the player count of an external server.
type Players struct {
	Online int `json:"online" yaml:"online"`
	Max    int `json:"max" yaml:"max"`
}

// InfoFromExternalServer pings the server at host:port through the bridge.
func (s *System) InfoFromExternalServer(ctx context.Context, host string, port int) (*ServerInfo, error) {
	res, err := s.call(ctx, CmdExternalServerInfo,
		[]string{host, strconv.Itoa(port)},
		sdk.WithTimeout(ExternalServerInfoTimeout))
	if err != nil {
		return nil, err
	}
	return ParseServerInfo(res.Result)
}

// ParseServerInfo maps the positional result of CmdExternalServerInfo:
// ping, edition, game mode, map name, name, online, max, server id, version.
func ParseServerInfo(data []string) (*ServerInfo, error) {
	if len(data) < 9 {
		return nil, sdk.Errorf("server info needs 9 fields, got %d", len(data))
	}
	ints := make([]int, 0, 3)
	for _, i := range []int{0, 5, 6} {
		n, err := strconv.Atoi(data[i])
		if err != nil {
			return nil, sdk.Errorf("invalid server info field %d %q", i, data[i])
		}
		ints = append(ints, n)
	}
	serverID, err := parseServerID(data[7])
	if err != nil {
		return nil, sdk.Errorf("invalid server id %q", data[7])
	}
	return &ServerInfo{
		Ping:     ints[0],
		Edition:  data[1],
		GameMode: data[2],
		MapName:  data[3],
		Name:     data[4],
		Players: Players{
			Online: ints[1],
			Max:    ints[2],
		},
		ServerID: serverID,
		Version:  data[8],
	}, nil
}

// parseServerID accepts signed and unsigned 64-bit server ids.
func parseServerID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	u, uerr := strconv.ParseUint(s, 10, 64)
	if uerr != nil {
		return 0, err
	}
	return int64(u), nil
}

// Fields returns the positional form of i, the inverse of ParseServerInfo.
func (i *ServerInfo) Fields() []string {
	return []string{
		strconv.Itoa(i.Ping),
		i.Edition,
		i.GameMode,
		i.MapName,
		i.Name,
		strconv.Itoa(i.Players.Online),
		strconv.Itoa(i.Players.Max),
		strconv.FormatInt(i.ServerID, 10),
		i.Version,
	}
}

// AllowedMentions controls which mentions of a Discord message ping.
type AllowedMentions struct {
	Parse       []string `json:"parse,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Users       []string `json:"users,omitempty"`
	RepliedUser *bool    `json:"replied_user,omitempty"`
}

// MessageOptions are optional fields of a Discord webhook message.
type MessageOptions struct {
	Username        string
	AvatarURL       string
	TTS             bool
	AllowedMentions *AllowedMentions
}

// EmbedOptions are optional fields of a Discord webhook embed message.
type EmbedOptions struct {
	MessageOptions
	Content string
}

// Embed is a Discord embed object.
type Embed map[string]any

// optionArgs serializes o into username, avatar url, tts and allowed mentions.
// Omitted fields are empty strings.
func (o *MessageOptions) optionArgs() ([]string, error) {
	if o == nil {
		return []string{"", "", "", ""}, nil
	}
	var tts, mentions string
	if o.TTS {
		tts = "true"
	}
	if o.AllowedMentions != nil {
		b, err := json.Marshal(o.AllowedMentions)
		if err != nil {
			return nil, sdk.Errorf("encoding allowed mentions: %v", err)
		}
		mentions = string(b)
	}
	return []string{o.Username, o.AvatarURL, tts, mentions}, nil
}

// SendDiscordMessage sends a plain message to a Discord webhook.
// webhook is a webhook URL or the "<id>/<token>" part of one.
func (s *System) SendDiscordMessage(ctx context.Context, webhook, content string, opts *MessageOptions) error {
	optArgs, err := opts.optionArgs()
	if err != nil {
		return err
	}
	args := append([]string{webhook, content}, optArgs...)
	_, err = s.call(ctx, CmdDiscordMessage, args)
	return err
}

// SendDiscordEmbed sends one or more embeds to a Discord webhook.
func (s *System) SendDiscordEmbed(ctx context.Context, webhook string, embeds []Embed, opts *EmbedOptions) error {
	if embeds == nil {
		embeds = []Embed{}
	}
	embedsJSON, err := json.Marshal(embeds)
	if err != nil {
		return sdk.Errorf("encoding embeds: %v", err)
	}
	var (
		content string
		msgOpts *MessageOptions
	)
	if opts != nil {
		content = opts.Content
		msgOpts = &opts.MessageOptions
	}
	optArgs, err := msgOpts.optionArgs()
	if err != nil {
		return err
	}
	args := append([]string{webhook, string(embedsJSON), content}, optArgs...)
	_, err = s.call(ctx, CmdDiscordEmbed, args)
	return err
}

// SendDiscordPayload sends a raw webhook payload to a Discord webhook.
func (s *System) SendDiscordPayload(ctx context.Context, webhook string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return sdk.Errorf("encoding payload: %v", err)
	}
	_, err = s.call(ctx, CmdDiscordPayload, []string{webhook, string(payloadJSON)})
	return err
}
