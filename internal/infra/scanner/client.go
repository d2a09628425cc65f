package scanner

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

const defaultTimeout = 30 * time.Second

// Client calls the external file-scanning service. The pipeline treats a
// scan as a single request/response exchange; verdict persistence is the
// caller's job.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("scanner url is required")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type scanRequest struct {
	StorageURI    string `json:"storage_uri"`
	ContentSHA256 string `json:"content_sha256"`
}

type scanResponse struct {
	Verdict   string `json:"verdict"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) Scan(ctx context.Context, storageURI, contentSHA256 string) (domain.ScanVerdict, error) {
	payload, err := json.Marshal(scanRequest{StorageURI: storageURI, ContentSHA256: contentSHA256})
	if err != nil {
		return domain.ScanVerdict{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scan", bytes.NewReader(payload))
	if err != nil {
		return domain.ScanVerdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ScanVerdict{}, fmt.Errorf("scanner request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.ScanVerdict{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ScanVerdict{}, fmt.Errorf("scanner returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded scanResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.ScanVerdict{}, fmt.Errorf("decode scanner response: %w", err)
	}
	switch decoded.Verdict {
	case "clean":
		return domain.ScanVerdict{Status: domain.ScanClean}, nil
	case "infected":
		return domain.ScanVerdict{Status: domain.ScanInfected, Signature: decoded.Signature}, nil
	default:
		return domain.ScanVerdict{Status: domain.ScanError}, fmt.Errorf("scanner verdict %q: %s", decoded.Verdict, decoded.Error)
	}
}
