package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Completion service error constants
var (
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
	ErrCompletionEmpty       = errors.New("completion provider returned no choices")
)

// CompletionService produces assistant replies for the chatbot endpoint
type CompletionService interface {
	Complete(ctx context.Context, message string) (string, error)
}

// OpenAICompletionClient talks to an OpenAI-compatible chat completions API
type OpenAICompletionClient struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// NewOpenAICompletionClient creates a chat completions client
func NewOpenAICompletionClient(baseURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *OpenAICompletionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAICompletionClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionReq struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResp struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// systemPrompt keeps answers scoped to the back-office domain
const systemPrompt = "Bạn là trợ lý ảo của hệ thống quản lý hồ sơ giải ngân. " +
	"Trả lời ngắn gọn, chính xác và bằng tiếng Việt."

// Complete sends the staff message and returns the assistant reply
func (c *OpenAICompletionClient) Complete(ctx context.Context, message string) (string, error) {
	body := chatCompletionReq{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrCompletionUnavailable, resp.StatusCode, string(raw))
	}

	var out chatCompletionResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrCompletionUnavailable, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrCompletionEmpty
	}

	return out.Choices[0].Message.Content, nil
}

// MockCompletionClient echoes a canned reply for local runs and tests
type MockCompletionClient struct{}

func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{}
}

func (c *MockCompletionClient) Complete(ctx context.Context, message string) (string, error) {
	return "Xin chào, tôi đã nhận được câu hỏi: " + message, nil
}
