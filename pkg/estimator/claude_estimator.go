package estimator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kalorikollen/domain"

	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultClaudeBaseURL = "https://api.anthropic.com/v1"
	DefaultClaudeModel   = "claude-sonnet-4-20250514"
	anthropicVersion     = "2023-06-01"
)

type (
	ClaudeEstimator struct {
		APIKey  string
		Model   string
		BaseURL string
		HTTP    *http.Client
	}

	claudeSource struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	}

	claudeBlock struct {
		Type   string        `json:"type"`
		Text   string        `json:"text,omitempty"`
		Source *claudeSource `json:"source,omitempty"`
	}

	claudeMessage struct {
		Role    string        `json:"role"`
		Content []claudeBlock `json:"content"`
	}

	claudeRequest struct {
		Model     string          `json:"model"`
		MaxTokens int             `json:"max_tokens"`
		Messages  []claudeMessage `json:"messages"`
	}

	claudeResponse struct {
		Content []claudeBlock `json:"content"`
	}
)

func NewClaudeEstimator(apiKey, model string) *ClaudeEstimator {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeEstimator{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: DefaultClaudeBaseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ClaudeEstimator) Estimate(ctx context.Context, image domain.MealImage) (domain.NutritionEstimate, error) {
	if e.APIKey == "" {
		return domain.NutritionEstimate{}, domain.ErrEstimatorNotConfigured
	}

	reply, err := e.send(ctx, image)
	if err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("%w: %v", domain.ErrEstimationFailed, err)
	}
	log.Debugf("claude raw response: %s", reply)
	return ParseEstimate(reply)
}

func (e *ClaudeEstimator) send(ctx context.Context, image domain.MealImage) (string, error) {
	requestJSON, err := json.Marshal(claudeRequest{
		Model:     e.Model,
		MaxTokens: 1000,
		Messages: []claudeMessage{{
			Role: "user",
			Content: []claudeBlock{
				{
					Type: "image",
					Source: &claudeSource{
						Type:      "base64",
						MediaType: mimeTypeOrDefault(image.MimeType),
						Data:      base64.StdEncoding.EncodeToString(image.Data),
					},
				},
				{Type: "text", Text: claudePrompt},
			},
		}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/messages", bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var claudeResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&claudeResp); err != nil {
		return "", err
	}
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
