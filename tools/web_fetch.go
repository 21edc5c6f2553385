package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chaiwat-s/relayd/core"
)

// WebFetch performs an HTTP GET against URLs matching a configured set of
// allowed prefixes.
type WebFetch struct {
	allowed []string
	client  *http.Client
}

type webFetchArgs struct {
	URL string `json:"url"`
}

func NewWebFetch(allowedPrefixes []string) *WebFetch {
	return &WebFetch{
		allowed: allowedPrefixes,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *WebFetch) Name() string {
	return "web_fetch"
}

func (t *WebFetch) Description() string {
	return "Fetch content from an allowlisted URL and return the response body as text"
}

func (t *WebFetch) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "The URL to fetch"
			}
		},
		"required": ["url"]
	}`)
}

func (t *WebFetch) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params webFetchArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if params.URL == "" {
		return "", fmt.Errorf("%w: url is required", core.ErrValidation)
	}

	if !hasAllowedPrefix(params.URL, t.allowed) {
		return "", fmt.Errorf("%w: allowed prefixes: %s", core.ErrAllowlist, strings.Join(t.allowed, ", "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, params.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return truncate(string(body), maxOutput), nil
}

func hasAllowedPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
