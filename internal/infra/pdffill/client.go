package pdffill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

const (
	defaultTimeout = 60 * time.Second
	// The fill service rejects bodies above 5 MiB; enforce the same cap
	// client-side so oversized field data fails fast.
	maxBodyBytes = 5 << 20
)

// Client talks to the XFA PDF fill microservice, which wraps the pikepdf
// fill logic behind POST /fill-pdf and GET /health.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewClient(baseURL, secret string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("pdf service url is required")
	}
	if secret == "" {
		return nil, errors.New("pdf service secret is required")
	}
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type fillRequest struct {
	FormType  string            `json:"form_type"`
	FieldData map[string]string `json:"field_data"`
	Flatten   bool              `json:"flatten"`
}

// FillStats mirrors the service's per-fill accounting.
type FillStats struct {
	Filled int      `json:"filled"`
	Total  int      `json:"total"`
	Errors []string `json:"errors"`
}

type FillResult struct {
	PDF   []byte
	Stats FillStats
}

func (c *Client) Fill(ctx context.Context, formType domain.FormType, fieldData map[string]string, flatten bool) (FillResult, error) {
	if _, err := TemplateFile(formType); err != nil {
		return FillResult{}, err
	}
	if err := ValidateFieldData(fieldData); err != nil {
		return FillResult{}, err
	}
	payload, err := json.Marshal(fillRequest{
		FormType:  string(formType),
		FieldData: fieldData,
		Flatten:   flatten,
	})
	if err != nil {
		return FillResult{}, err
	}
	if len(payload) > maxBodyBytes {
		return FillResult{}, fmt.Errorf("field data exceeds %d bytes: %w", maxBodyBytes, domain.ErrInvalidArgument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fill-pdf", bytes.NewReader(payload))
	if err != nil {
		return FillResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return FillResult{}, fmt.Errorf("pdf service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return FillResult{}, fmt.Errorf("pdf service returned %d: %s", resp.StatusCode, string(body))
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return FillResult{}, err
	}

	result := FillResult{PDF: pdf}
	if raw := resp.Header.Get("X-Fill-Stats"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &result.Stats); err != nil {
			return FillResult{}, fmt.Errorf("decode fill stats: %w", err)
		}
	}
	return result, nil
}

type healthResponse struct {
	Status    string   `json:"status"`
	Templates []string `json:"templates"`
}

// Health verifies the fill service is up and reports which templates it has.
func (c *Client) Health(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf service health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf service health returned %d", resp.StatusCode)
	}
	var decoded healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("pdf service unhealthy: %s", decoded.Status)
	}
	return decoded.Templates, nil
}
