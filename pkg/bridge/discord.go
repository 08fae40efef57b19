package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.minekube.com/scriptsdk/pkg/sdk"
)

// maxErrorBody limits how much of a failed webhook response is reported.
const maxErrorBody = 4 << 10

type discord struct {
	client  *http.Client
	baseURL string
}

// webhookURL returns webhook if it is a URL, or the URL
// of the "<id>/<token>" webhook below the base URL.
func (d *discord) webhookURL(webhook string) string {
	if strings.HasPrefix(webhook, "http://") || strings.HasPrefix(webhook, "https://") {
		return webhook
	}
	return strings.TrimSuffix(d.baseURL, "/") + "/" + strings.TrimPrefix(webhook, "/")
}

func withHeader(rt http.RoundTripper, header http.Header) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return headerRoundTripper{Header: header, rt: rt}
}

type headerRoundTripper struct {
	http.Header
	rt http.RoundTripper
}

func (h headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range h.Header {
		req.Header[k] = v
	}
	return h.rt.RoundTrip(req)
}

// post posts payload as JSON and returns the response status code.
func (d *discord) post(ctx context.Context, webhook string, payload any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("error encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL(webhook), bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// sendWebhook posts payload and maps the outcome to a result.
func (h *Handler) sendWebhook(ctx context.Context, webhook string, payload any) *sdk.Result {
	status, err := h.discord.post(ctx, webhook, payload)
	if err != nil {
		return fail(CodeInternal, err.Error())
	}
	return succeed(strconv.Itoa(status))
}

// parseJSON decodes s, returning nil for an empty s.
func parseJSON(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseBool reports whether s is a truthy flag value.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// messageOptions adds username, avatar url, tts and allowed mentions
// to payload. The fields are omitted when empty.
func messageOptions(payload map[string]any, username, avatarURL, tts, allowedMentions string) error {
	mentions, err := parseJSON(allowedMentions)
	if err != nil {
		return err
	}
	if username != "" {
		payload["username"] = username
	}
	if avatarURL != "" {
		payload["avatar_url"] = avatarURL
	}
	if tts != "" {
		payload["tts"] = parseBool(tts)
	}
	if mentions != nil {
		payload["allowed_mentions"] = mentions
	}
	return nil
}

// Body: webhook;#;content;#;username;#;avatarUrl;#;tts;#;allowedMentionsJson
func (h *Handler) discordMessage(ctx context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 6)
	if !ok {
		return invalidBody()
	}
	payload := map[string]any{"content": f[1]}
	if err := messageOptions(payload, f[2], f[3], f[4], f[5]); err != nil {
		return fail(CodeBadRequest, err.Error())
	}
	return h.sendWebhook(ctx, f[0], payload)
}

var errEmbeds = errors.New("embeds must be a JSON object or array")

// Body: webhook;#;embedsJson;#;content;#;username;#;avatarUrl;#;tts;#;allowedMentionsJson
func (h *Handler) discordEmbed(ctx context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 7)
	if !ok {
		return invalidBody()
	}
	embeds, err := parseJSON(f[1])
	if err != nil {
		return fail(CodeBadRequest, err.Error())
	}
	switch e := embeds.(type) {
	case map[string]any:
		embeds = []any{e}
	case []any:
	default:
		return fail(CodeBadRequest, errEmbeds.Error())
	}

	payload := map[string]any{"embeds": embeds}
	if f[2] != "" {
		payload["content"] = f[2]
	}
	if err := messageOptions(payload, f[3], f[4], f[5], f[6]); err != nil {
		return fail(CodeBadRequest, err.Error())
	}
	return h.sendWebhook(ctx, f[0], payload)
}

// Body: webhook;#;payloadJson
func (h *Handler) discordPayload(ctx context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 2)
	if !ok {
		return invalidBody()
	}
	payload, err := parseJSON(f[1])
	if err != nil {
		return fail(CodeBadRequest, err.Error())
	}
	if _, ok := payload.(map[string]any); !ok {
		return fail(CodeBadRequest, "payload must be a JSON object")
	}
	return h.sendWebhook(ctx, f[0], payload)
}
