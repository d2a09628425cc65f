package analyzer

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

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	maxRetries       = 3
	initialDelay     = 1 * time.Second
	maxOutputTokens  = 2048
)

// Client analyzes immigration documents with the Anthropic messages API.
// The model returns a summary plus any form fields it can extract, as JSON.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model == "" {
		return nil, errors.New("analysis model is required")
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// NewClientWithBaseURL is for tests pointing at a stub server.
func NewClientWithBaseURL(apiKey, model, baseURL string) (*Client, error) {
	c, err := NewClient(apiKey, model)
	if err != nil {
		return nil, err
	}
	c.baseURL = baseURL
	return c, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type modelOutput struct {
	Summary string            `json:"summary"`
	Fields  map[string]string `json:"fields"`
}

const systemPrompt = `You are a paralegal assistant reviewing documents submitted for US ` +
	`immigration cases. Respond with a single JSON object: {"summary": <3-5 sentence ` +
	`summary>, "fields": {<field name>: <value>}} where fields holds any names, dates, ` +
	`receipt numbers, or alien registration numbers found. Respond with JSON only.`

func (c *Client) Analyze(ctx context.Context, formType domain.FormType, filename, text string) (domain.AnalysisOutput, error) {
	if strings.TrimSpace(text) == "" {
		return domain.AnalysisOutput{}, fmt.Errorf("document %s: %w", filename, domain.ErrInvalidArgument)
	}
	prompt := fmt.Sprintf("Form type: %s\nFilename: %s\n\nDocument text:\n%s", formType, filename, text)
	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return domain.AnalysisOutput{}, err
	}

	var lastErr error
	delay := initialDelay
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.AnalysisOutput{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		result, retryable, err := c.send(ctx, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return domain.AnalysisOutput{}, err
		}
	}
	return domain.AnalysisOutput{}, fmt.Errorf("analysis failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) send(ctx context.Context, payload []byte) (domain.AnalysisOutput, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return domain.AnalysisOutput{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.AnalysisOutput{}, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.AnalysisOutput{}, true, err
	}
	if resp.StatusCode != http.StatusOK {
		var decoded apiError
		_ = json.Unmarshal(body, &decoded)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return domain.AnalysisOutput{}, retryable, fmt.Errorf("anthropic returned %d: %s", resp.StatusCode, decoded.Error.Message)
	}

	var decoded messagesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.AnalysisOutput{}, false, fmt.Errorf("decode messages response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return domain.AnalysisOutput{}, false, errors.New("empty model response")
	}
	output, err := parseModelOutput(decoded.Content[0].Text)
	if err != nil {
		return domain.AnalysisOutput{}, false, err
	}
	return domain.AnalysisOutput{
		Summary:         output.Summary,
		ExtractedFields: output.Fields,
		InputTokens:     decoded.Usage.InputTokens,
		OutputTokens:    decoded.Usage.OutputTokens,
	}, false, nil
}

// parseModelOutput tolerates a fenced code block around the JSON.
func parseModelOutput(text string) (modelOutput, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	var output modelOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &output); err != nil {
		return modelOutput{}, fmt.Errorf("model output is not the expected JSON: %w", err)
	}
	if output.Summary == "" {
		return modelOutput{}, errors.New("model output missing summary")
	}
	return output, nil
}
