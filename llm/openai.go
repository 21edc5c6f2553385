package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/chaiwat-s/relayd/core"
)

// OpenAIClient talks to an OpenAI-compatible chat-completion and embeddings
// backend.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	cfg := DefaultClientConfig()
	cfg.APIKey = apiKey
	return NewOpenAIClientWithConfig(cfg)
}

func NewOpenAIClientWithConfig(cfg ClientConfig) *OpenAIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}
	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (c *OpenAIClient) Chat(ctx context.Context, model core.ModelConfig, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error) {
	reqBody := map[string]any{
		"model":       model.Name,
		"messages":    buildMessages(msgs),
		"temperature": model.Temperature,
	}
	if model.MaxTokens > 0 {
		reqBody["max_tokens"] = model.MaxTokens
	}
	if len(tools) > 0 {
		reqBody["tools"] = buildTools(tools)
	}

	resp, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parseResponse(result), nil
}

// ChatStream starts a streaming completion and returns a channel of parsed
// chunks. The channel yields content fragments in arrival order and is
// terminated by exactly one chunk carrying Done or Error.
func (c *OpenAIClient) ChatStream(ctx context.Context, model core.ModelConfig, msgs []core.Message) (<-chan StreamChunk, error) {
	reqBody := map[string]any{
		"model":       model.Name,
		"messages":    buildMessages(msgs),
		"temperature": model.Temperature,
		"stream":      true,
	}
	if model.MaxTokens > 0 {
		reqBody["max_tokens"] = model.MaxTokens
	}

	resp, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk)
	go c.readStream(resp, ch)
	return ch, nil
}

// EmbedBatch generates one embedding per input, order-preserving.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	resp, err := c.post(ctx, "/embeddings", map[string]any{
		"model": model,
		"input": inputs,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result openAIEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", core.ErrProvider, len(inputs), len(result.Data))
	}

	// The API sorts by index already, but the contract is order-preserving.
	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	out := make([]EmbeddingResponse, len(result.Data))
	for i, d := range result.Data {
		out[i] = EmbeddingResponse{Embedding: d.Embedding}
	}
	return out, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, reqBody map[string]any) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, core.ErrMissingCredential
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrProvider, resp.StatusCode, string(respBody))
	}

	return resp, nil
}

func buildMessages(msgs []core.Message) []map[string]any {
	messages := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		msg := map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.ToolCallID != "" {
			msg["tool_call_id"] = m.ToolCallID
		}
		messages = append(messages, msg)
	}
	return messages
}

func buildTools(tools []core.ToolSchema) []map[string]any {
	result := make([]map[string]any, len(tools))
	for i, t := range tools {
		result[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		}
	}
	return result
}

func parseResponse(resp openAIResponse) *ChatResponse {
	if len(resp.Choices) == 0 {
		return &ChatResponse{}
	}

	choice := resp.Choices[0]
	result := &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return result
}

// readStream parses the provider's SSE body line by line. Individual lines
// that fail to parse are skipped without aborting the stream.
func (c *OpenAIClient) readStream(resp *http.Response, ch chan<- StreamChunk) {
	defer resp.Body.Close()
	defer close(ch)

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				ch <- StreamChunk{Error: fmt.Errorf("%w: %v", core.ErrProvider, err), Done: true}
			} else {
				ch <- StreamChunk{Done: true}
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "data: [DONE]" {
			ch <- StreamChunk{Done: true}
			return
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var chunk openAIStreamChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			continue
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			ch <- StreamChunk{Content: chunk.Choices[0].Delta.Content}
		}
	}
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}
