package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"antispam/internal/models"
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the detector client.
type Config struct {
	APIKey    string
	BaseURL   string // e.g. "https://api.openai.com/v1"
	ModelName string // e.g. "gpt-4o-mini"
	Timeout   time.Duration
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatMessage content is either a plain string or a part list for
// image-bearing requests.
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewClient creates a new detector client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("detector API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	logger.Info("Detector client initialized",
		zap.String("model", cfg.ModelName),
		zap.String("base_url", client.baseURL))

	return client, nil
}

// DetectText classifies a text message. The returned latency is valid even
// when the result is nil.
func (c *Client) DetectText(ctx context.Context, text string, summary Summary) (*models.DetectionResult, int64, error) {
	start := time.Now()
	result, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: buildTextPrompt(summary, text)},
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Error("Text detection failed", zap.Error(err), zap.Int64("elapsed_ms", elapsed))
		return nil, elapsed, err
	}
	return result, elapsed, nil
}

// DetectPhoto classifies a photo by URL together with its caption.
func (c *Client) DetectPhoto(ctx context.Context, photoURL string, summary Summary, caption string) (*models.DetectionResult, int64, error) {
	start := time.Now()
	result, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: buildPhotoPrompt(summary, caption)},
			{Type: "image_url", ImageURL: &imageURL{URL: photoURL}},
		}},
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Error("Photo detection failed", zap.Error(err), zap.Int64("elapsed_ms", elapsed))
		return nil, elapsed, err
	}
	return result, elapsed, nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (*models.DetectionResult, error) {
	reqBody := chatRequest{
		Model:          c.modelName,
		Messages:       messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseVerdict(apiResp.Choices[0].Message.Content)
}

// parseVerdict extracts the structured verdict, tolerating markdown code
// fences some models wrap JSON in.
func parseVerdict(content string) (*models.DetectionResult, error) {
	cleanJSON := strings.TrimSpace(content)
	cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
	cleanJSON = strings.TrimPrefix(cleanJSON, "```")
	cleanJSON = strings.TrimSuffix(cleanJSON, "```")
	cleanJSON = strings.TrimSpace(cleanJSON)

	var result models.DetectionResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %w", err)
	}

	if result.State != models.StateBenign && result.State != models.StateSpam {
		return nil, fmt.Errorf("invalid state in verdict: %d", result.State)
	}
	if result.SpamScore < 0 || result.SpamScore > 100 {
		return nil, fmt.Errorf("spam score out of range: %d", result.SpamScore)
	}

	return &result, nil
}
