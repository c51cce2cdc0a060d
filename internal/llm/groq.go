package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"comida-a-casa/internal/shared"
)

const defaultGroqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient is a client for the Groq API. Groq has no native response
// schema, so the schema is appended to the prompt and json_object mode is
// requested.
type GroqClient struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(apiKey, model string) *GroqClient {
	return &GroqClient{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultGroqAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func (c *GroqClient) WithBaseURL(url string) *GroqClient {
	c.apiURL = url
	return c
}

// GenerateJSON sends a prompt to the Groq model and returns the generated text.
func (c *GroqClient) GenerateJSON(ctx context.Context, req Request) (ContentResponse, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		prompt += "\n\nResponde ÚNICAMENTE con un objeto JSON válido que cumpla este esquema JSON, sin texto adicional:\n" + req.Schema.JSON()
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature":     0.4,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := shared.TokenUsage{
		PromptTokens:     groqResp.Usage.PromptTokens,
		CompletionTokens: groqResp.Usage.CompletionTokens,
		TotalTokens:      groqResp.Usage.TotalTokens,
		Model:            c.model,
	}

	if len(groqResp.Choices) == 0 || groqResp.Choices[0].Message.Content == "" {
		return ContentResponse{Usage: usage}, ErrNoContent
	}

	return ContentResponse{Content: groqResp.Choices[0].Message.Content, Usage: usage}, nil
}
