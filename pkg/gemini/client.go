package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

const jsonMIMEType = "application/json"

var errEmptyResponse = errors.New("gemini returned no text")

// Client wraps a genai client bound to one model.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

// New creates a Gemini client from config.
func New(ctx context.Context, cfg config.GeminiConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "model", model), "gemini client initialized")
	}
	return &Client{client: client, model: model, temperature: cfg.Temperature}, nil
}

// GenerateJSON sends the prompt and one inline document, asking for a JSON reply.
func (c *Client) GenerateJSON(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client not initialized")
	}
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = jsonMIMEType

	parts := []genai.Part{genai.Text(prompt)}
	if len(data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
