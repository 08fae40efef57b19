// Package bridge implements the server side of the ScriptSDK RPC.
//
// A Handler dispatches request frames to a Host (the game server) and to
// the system helpers that need no host (server info pings, Discord webhooks).
// A Server exposes a Handler over a websocket endpoint.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"go.minekube.com/scriptsdk/pkg/bridge/config"
	"go.minekube.com/scriptsdk/pkg/edition/bedrock/ping"
	"go.minekube.com/scriptsdk/pkg/internal/cachutil"
	"go.minekube.com/scriptsdk/pkg/internal/suggest"
	"go.minekube.com/scriptsdk/pkg/override"
	"go.minekube.com/scriptsdk/pkg/sdk"
	"go.minekube.com/scriptsdk/pkg/system"
	"go.minekube.com/scriptsdk/pkg/util/errs"
	"go.minekube.com/scriptsdk/pkg/version"
)

var (
	meter  = otel.Meter("scriptsdk/bridge")
	tracer = otel.Tracer("scriptsdk/bridge")
)

// Result codes beside sdk.CodeNotFound.
const (
	CodeOK         = http.StatusOK
	CodeBadRequest = http.StatusBadRequest
	CodeInternal   = http.StatusInternalServerError
)

// HandlerOptions are options for NewHandler.
type HandlerOptions struct {
	// Host serves player and entity commands.
	// Defaults to NopHost.
	Host Host
	// Logger defaults to logr.Discard().
	Logger logr.Logger
	// Config provides the Discord and ping settings.
	// Defaults to config.DefaultConfig.
	Config *config.Config
	// Pinger pings external servers. Defaults to ping.RakNet.
	Pinger ping.Pinger
	// HTTPClient posts Discord webhooks. It is copied and its transport
	// instrumented. Defaults to a client with the configured Discord timeout.
	HTTPClient *http.Client
}

// actionFunc handles the body of one action.
type actionFunc func(ctx context.Context, body string) *sdk.Result

// Handler dispatches requests by action.
// It is safe for concurrent use.
type Handler struct {
	host Host
	log  logr.Logger

	// name tag overrides, owner -> viewer -> name
	playerNames *override.Registry
	entityNames *override.Registry

	serverInfo *cachutil.Cache[*system.ServerInfo]
	discord    *discord

	actions map[string]actionFunc

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHandler returns a new Handler.
func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Host == nil {
		opts.Host = NopHost
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	if opts.Config == nil {
		c := config.DefaultConfig
		opts.Config = &c
	}
	if opts.Pinger == nil {
		opts.Pinger = ping.RakNet
	}
	cli := &http.Client{Timeout: opts.Config.Discord.Timeout}
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		cli = &c
	}
	cli.Transport = otelhttp.NewTransport(cli.Transport)
	cli.Transport = withHeader(cli.Transport, version.UserAgentHeader())

	h := &Handler{
		host:        opts.Host,
		log:         opts.Logger,
		playerNames: override.New(),
		entityNames: override.New(),
		discord: &discord{
			client:  cli,
			baseURL: opts.Config.Discord.BaseURL,
		},
	}
	h.serverInfo = cachutil.New(opts.Config.Ping.CacheTTL,
		pingLoader(opts.Pinger, opts.Config.Ping.Timeout))

	var err1, err2 error
	h.requests, err1 = meter.Int64Counter(
		"scriptsdk.bridge.requests",
		metric.WithDescription("Total number of handled bridge requests"),
	)
	h.duration, err2 = meter.Float64Histogram(
		"scriptsdk.bridge.request.duration",
		metric.WithDescription("Bridge request handling duration in seconds"),
		metric.WithUnit("s"),
	)
	for _, err := range []error{err1, err2} {
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	h.actions = map[string]actionFunc{
		"getPlayerIp":              h.playerInfo(func(p Player) string { return p.Address() }),
		"getPlayerPing":            h.playerInfo(func(p Player) string { return fmt.Sprint(p.Ping()) }),
		"getPlayerXuid":            h.playerInfo(func(p Player) string { return p.XUID() }),
		"getPlayerOS":              h.playerInfo(func(p Player) string { return p.DeviceOS() }),
		"sendToast":                h.sendToast,
		"sendPopup":                h.sendPopup,
		"setBossBar":               h.setBossBar,
		"resetBossBar":             h.resetBossBar,
		"setPlayerNameForPlayer":   h.setPlayerName,
		"resetPlayerNameForPlayer": h.resetPlayerName,
		"setEntityNameForPlayer":   h.setEntityName,
		"resetEntityNameForPlayer": h.resetEntityName,

		system.CmdExternalServerInfo: h.externalServerInfo,
		system.CmdDiscordMessage:     h.discordMessage,
		system.CmdDiscordEmbed:       h.discordEmbed,
		system.CmdDiscordPayload:     h.discordPayload,
	}
	return h, nil
}

// Start runs background maintenance, like evicting expired
// server info, until ctx is done.
func (h *Handler) Start(ctx context.Context) {
	h.serverInfo.Start(ctx)
}

// Actions returns the sorted names of all handled actions.
func (h *Handler) Actions() []string {
	names := make([]string, 0, len(h.actions))
	for name := range h.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlayerNameTags returns the player name tag overrides set through the bridge.
// Owners are player names, viewers are the names of the players seeing them.
// Hosts use it to reapply overrides, e.g. after a player respawned.
func (h *Handler) PlayerNameTags() *override.Registry { return h.playerNames }

// EntityNameTags returns the entity name tag overrides set through the bridge.
// Owners are entity ids.
func (h *Handler) EntityNameTags() *override.Registry { return h.entityNames }

// Handle handles req and returns the response to send back.
func (h *Handler) Handle(ctx context.Context, req sdk.Request) *sdk.Response {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "bridge.Handle",
		trace.WithAttributes(attribute.String("action", req.Action)))
	defer span.End()

	var res *sdk.Result
	if fn, ok := h.actions[req.Action]; ok {
		res = fn(ctx, req.Body)
	} else {
		res = h.unknown(req.Action)
	}

	attrs := metric.WithAttributes(
		attribute.String("action", req.Action),
		attribute.Int("code", res.Code),
	)
	h.requests.Add(ctx, 1, attrs)
	h.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	span.SetAttributes(attribute.Int("code", res.Code))

	if !res.Success {
		err := fmt.Errorf("action %q failed with code %d: %s", req.Action, res.Code, res.First())
		if res.Code < CodeInternal {
			err = errs.WrapSilent(err)
		}
		h.logFailure(err)
	}
	return &sdk.Response{ID: req.ID, Result: *res}
}

func (h *Handler) logFailure(err error) {
	if errs.IsSilent(err) {
		h.log.V(1).Info("request rejected", "reason", err.Error())
		return
	}
	h.log.Error(err, "request failed")
}

func (h *Handler) unknown(action string) *sdk.Result {
	msg := fmt.Sprintf("unknown action %q", action)
	if s, ok := suggest.Closest(action, h.Actions()); ok {
		msg += fmt.Sprintf(", did you mean %q?", s)
	}
	return fail(CodeBadRequest, msg)
}

func succeed(result ...string) *sdk.Result {
	if result == nil {
		result = []string{}
	}
	return &sdk.Result{Success: true, Code: CodeOK, Result: result}
}

func fail(code int, msg string) *sdk.Result {
	return &sdk.Result{Code: code, Result: []string{msg}}
}

var (
	invalidBody    = func() *sdk.Result { return fail(CodeBadRequest, "invalid body") }
	playerNotFound = func() *sdk.Result { return fail(sdk.CodeNotFound, "player not found") }
	targetNotFound = func() *sdk.Result { return fail(sdk.CodeNotFound, "target not found") }
	entityNotFound = func() *sdk.Result { return fail(sdk.CodeNotFound, "entity not found") }
)
