package server

import (
	"github.com/chaiwat-s/relayd/server/store"
	"github.com/chaiwat-s/relayd/vector"
)

type QueryRequest struct {
	Text      string `json:"text" validate:"required"`
	SessionID string `json:"sessionId"`
}

type QueryResponse struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

type IngestRequest struct {
	Text string         `json:"text" validate:"required"`
	Meta map[string]any `json:"meta,omitempty"`
}

type IngestResponse struct {
	OK  bool            `json:"ok"`
	Doc vector.Document `json:"doc"`
}

type WebFetchRequest struct {
	URL string `json:"url" validate:"required"`
}

type FileReadRequest struct {
	Path string `json:"path" validate:"required"`
}

type ToolResponse struct {
	Data string `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ExchangeListResponse struct {
	Exchanges []store.ExchangeInfo `json:"exchanges"`
}

// messagesError is the messages-protocol error envelope.
type messagesError struct {
	Type  string            `json:"type"`
	Error messagesErrorBody `json:"error"`
}

type messagesErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
