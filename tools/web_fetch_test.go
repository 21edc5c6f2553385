package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiwat-s/relayd/core"
)

func TestWebFetch_AllowedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fetched body"))
	}))
	defer srv.Close()

	tool := NewWebFetch([]string{srv.URL})
	out, err := tool.Execute(context.Background(), args(t, map[string]any{"url": srv.URL + "/page"}))
	require.NoError(t, err)
	assert.Equal(t, "fetched body", out)
}

func TestWebFetch_BlockedByAllowlist(t *testing.T) {
	tool := NewWebFetch([]string{"https://api.github.com"})
	_, err := tool.Execute(context.Background(), args(t, map[string]any{"url": "https://evil.example.com/x"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAllowlist)
}

func TestWebFetch_EmptyAllowlistBlocksEverything(t *testing.T) {
	tool := NewWebFetch(nil)
	_, err := tool.Execute(context.Background(), args(t, map[string]any{"url": "https://example.com"}))
	assert.ErrorIs(t, err, core.ErrAllowlist)
}

func TestWebFetch_TruncatesAtCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("b", maxOutput+1000)))
	}))
	defer srv.Close()

	tool := NewWebFetch([]string{srv.URL})
	out, err := tool.Execute(context.Background(), args(t, map[string]any{"url": srv.URL}))
	require.NoError(t, err)
	assert.Len(t, out, maxOutput)
}

func TestWebFetch_MissingURLArg(t *testing.T) {
	tool := NewWebFetch([]string{"https://example.com"})
	_, err := tool.Execute(context.Background(), args(t, map[string]any{}))
	assert.ErrorIs(t, err, core.ErrValidation)
}
