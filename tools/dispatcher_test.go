package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_UnknownToolBecomesText(t *testing.T) {
	d := NewDefaultDispatcher(nil, nil)
	out := d.Execute(context.Background(), "no_such_tool", json.RawMessage(`{}`))
	assert.True(t, strings.HasPrefix(out, "Error:"), "got %q", out)
	assert.Contains(t, out, "no_such_tool")
}

func TestDispatcher_AllowlistViolationBecomesText(t *testing.T) {
	d := NewDefaultDispatcher([]string{"https://api.github.com"}, nil)
	out := d.Execute(context.Background(), "web_fetch", json.RawMessage(`{"url":"https://evil.example.com"}`))
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "allowlist")
}

func TestDispatcher_RunPropagatesErrors(t *testing.T) {
	d := NewDefaultDispatcher(nil, nil)
	_, err := d.Run(context.Background(), "no_such_tool", json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestDispatcher_SchemasAdvertiseBothTools(t *testing.T) {
	d := NewDefaultDispatcher(nil, nil)
	schemas := d.Schemas()
	require.Len(t, schemas, 2)
	assert.Equal(t, "web_fetch", schemas[0].Name)
	assert.Equal(t, "file_read", schemas[1].Name)
	for _, s := range schemas {
		assert.NotEmpty(t, s.Description)
		assert.True(t, json.Valid(s.Parameters))
	}
}
