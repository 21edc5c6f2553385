package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chaiwat-s/relayd/bridge"
	"github.com/chaiwat-s/relayd/core"
	"github.com/chaiwat-s/relayd/server/store"
)

const defaultSessionID = "default"

// ssePingInterval is how often the /sse channel emits keep-alive pings.
const ssePingInterval = 25 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true})
}

// handleSSE opens the long-lived event channel: one ready event, then
// periodic pings until the client disconnects. The ticker is released the
// moment the connection closes.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	sw, err := NewSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	sw.WriteEvent("ready", map[string]any{"message": "server ready", "sessionId": sessionID})

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := sw.WriteEvent("ping", map[string]any{"t": time.Now().UnixMilli()}); err != nil {
				return
			}
		}
	}
}

// handleQuery runs the full retrieval + completion pipeline and updates
// session memory with both turns.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing text"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	start := time.Now()
	ctx := r.Context()

	msgs, err := s.pipeline.Build(ctx, req.SessionID, req.Text)
	if err != nil {
		s.logger.Error("build context failed", zap.Error(err))
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := s.client.Chat(ctx, core.DefaultModelConfig(s.model), msgs, nil)
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		s.recordExchange("/query", req.SessionID, req.Text, err.Error(), 0, 0, start, "error")
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	s.sessions.Push(req.SessionID, core.NewUserMessage(req.Text))
	s.sessions.Push(req.SessionID, core.NewAssistantMessage(resp.Content))
	s.recordExchange("/query", req.SessionID, req.Text, resp.Content,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, start, "success")

	writeJSON(w, http.StatusOK, QueryResponse{SessionID: req.SessionID, Answer: resp.Content})
}

// handleMessages is the messages-protocol endpoint, streaming or not.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var req bridge.MessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessagesError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeMessagesError(w, http.StatusBadRequest, "invalid_request_error", "messages is required")
		return
	}

	model := req.Model
	if model == "" {
		model = s.model
	}
	mc := core.DefaultModelConfig(model)
	if req.MaxTokens > 0 {
		mc = mc.WithMaxTokens(req.MaxTokens)
	}
	if req.Temperature != nil {
		mc = mc.WithTemperature(*req.Temperature)
	}

	msgs := bridge.FlattenMessages(req.Messages)
	input := ""
	if len(msgs) > 0 {
		input = msgs[len(msgs)-1].Content
	}
	start := time.Now()

	if req.Stream {
		chunks, err := s.client.ChatStream(r.Context(), mc, msgs)
		if err != nil {
			s.logger.Error("stream start failed", zap.Error(err))
			writeMessagesError(w, statusForError(err), "api_error", err.Error())
			return
		}

		sw, err := NewSSEWriter(w)
		if err != nil {
			writeMessagesError(w, http.StatusInternalServerError, "api_error", err.Error())
			return
		}

		reframer := bridge.NewReframer(sw)
		state := reframer.Run(chunks)

		status := "success"
		if state == bridge.StateErrored {
			status = "error"
		}
		s.recordExchange("/v1/messages", "", input, reframer.Text(), 0, 0, start, status)
		return
	}

	resp, err := s.client.Chat(r.Context(), mc, msgs, s.translator.TranslateTools(req.Tools))
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		s.recordExchange("/v1/messages", "", input, err.Error(), 0, 0, start, "error")
		writeMessagesError(w, statusForError(err), "api_error", err.Error())
		return
	}

	out := s.translator.BuildResponse(r.Context(), model, resp)
	s.recordExchange("/v1/messages", "", input, out.Content[0].Text,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, start, "success")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "text required"})
		return
	}

	doc, err := s.pipeline.Ingest(r.Context(), req.Text, req.Meta)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{OK: true, Doc: doc})
}

func (s *Server) handleToolWebFetch(w http.ResponseWriter, r *http.Request) {
	var req WebFetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.runTool(w, r, "web_fetch", req)
}

func (s *Server) handleToolFileRead(w http.ResponseWriter, r *http.Request) {
	var req FileReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.runTool(w, r, "file_read", req)
}

// runTool mirrors the dispatcher for direct single-tool invocation; here a
// failure is an HTTP error, not conversation text.
func (s *Server) runTool(w http.ResponseWriter, r *http.Request, name string, args any) {
	raw, err := json.Marshal(args)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	data, err := s.dispatcher.Run(r.Context(), name, raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ToolResponse{Data: data})
}

func (s *Server) handleExchangeList(w http.ResponseWriter, r *http.Request) {
	if s.exchanges == nil {
		writeJSON(w, http.StatusOK, ExchangeListResponse{})
		return
	}
	list, err := s.exchanges.List(r.Context(), 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExchangeListResponse{Exchanges: list})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.exchanges == nil {
		writeJSON(w, http.StatusOK, store.Summary{})
		return
	}
	sum, err := s.exchanges.Summary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// recordExchange logs one completed request to the exchange store. The
// request context may already be canceled when a stream ends, so the insert
// uses a short background context.
func (s *Server) recordExchange(endpoint, sessionID, input, output string, inTokens, outTokens int, start time.Time, status string) {
	if s.exchanges == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.exchanges.Add(ctx, store.ExchangeInfo{
		ID:           uuid.NewString(),
		Endpoint:     endpoint,
		SessionID:    sessionID,
		Input:        input,
		Output:       output,
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		ElapsedMs:    time.Since(start).Milliseconds(),
		Status:       status,
		Timestamp:    start.UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("record exchange failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessagesError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, messagesError{
		Type:  "error",
		Error: messagesErrorBody{Type: errType, Message: msg},
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrToolNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
