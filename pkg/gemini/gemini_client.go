package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
)

var ErrEmptyResponse = errors.New("gemini returned no content")

type (
	Client struct {
		APIKey  string
		Model   string
		BaseURL string
		HTTP    *http.Client
	}

	// Part is either a text prompt or an inline image.
	Part struct {
		Text       string      `json:"text,omitempty"`
		InlineData *InlineData `json:"inline_data,omitempty"`
	}

	InlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP,omitempty"`
		TopK        int     `json:"topK,omitempty"`
	}

	content struct {
		Parts []Part `json:"parts"`
	}

	generateRequest struct {
		Contents         []content         `json:"contents"`
		GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func ImagePart(data []byte, mimeType string) Part {
	return Part{InlineData: &InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// GenerateContent sends one user turn and returns the text of the first
// candidate.
func (c *Client) GenerateContent(ctx context.Context, cfg *GenerationConfig, parts ...Part) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)

	requestJSON, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var geminiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", err
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
