package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chaiwat-s/relayd/core"
)

// Dispatcher validates and executes tool calls requested by the completion
// provider. Failures become textual results, never error returns: the result
// is re-injected into the conversation, so the calling model must always get
// something to react to.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// NewDefaultDispatcher builds a dispatcher with the two built-in tools under
// the given allowlists.
func NewDefaultDispatcher(allowWebFetch, allowFileRead []string) *Dispatcher {
	registry := NewRegistry()
	registry.Register(NewWebFetch(allowWebFetch))
	registry.Register(NewFileRead(allowFileRead))
	return NewDispatcher(registry)
}

// Execute dispatches one tool call. Any failure is rendered as an "Error:"
// string result.
func (d *Dispatcher) Execute(ctx context.Context, name string, args json.RawMessage) string {
	tool, ok := d.registry.Get(name)
	if !ok {
		return fmt.Sprintf("Error: %v: %s", core.ErrToolNotFound, name)
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result
}

// Run executes a tool directly, propagating errors. Used by the /tool/*
// endpoints, where a failure should surface as an HTTP error instead of
// conversation text.
func (d *Dispatcher) Run(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrToolNotFound, name)
	}
	return tool.Execute(ctx, args)
}

// Schemas advertises all registered tools to the completion provider.
func (d *Dispatcher) Schemas() []core.ToolSchema {
	return ToSchemas(d.registry.All())
}
