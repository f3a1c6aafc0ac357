package chat

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Request is one chat completion call: a system instruction plus the user's
// message.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer is the hosted chat endpoint.
type Completer interface {
	Complete(ctx context.Context, credential string, req Request) (string, error)
	// Verify checks that the endpoint accepts credential.
	Verify(ctx context.Context, credential string) error
}

// OpenAIClient calls an OpenAI-compatible chat completions API. A client is
// built per call because the credential can change between calls.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIClient(baseURL string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenAIClient) client(credential string) *openai.Client {
	config := openai.DefaultConfig(credential)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	config.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(config)
}

// completionRequest maps req onto the wire request. Temperature is omitted
// from the JSON when zero, so an explicit 0 is sent as the smallest positive
// float instead of falling back to the endpoint default.
func completionRequest(req Request) openai.ChatCompletionRequest {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, credential string, req Request) (string, error) {
	resp, err := c.client(credential).CreateChatCompletion(ctx, completionRequest(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Verify(ctx context.Context, credential string) error {
	_, err := c.client(credential).ListModels(ctx)
	return err
}

// Close releases idle connections.
func (c *OpenAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}
