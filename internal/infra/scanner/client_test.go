package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

func TestScan_CleanVerdict(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ContentSHA256 != "abc123" {
			t.Errorf("content hash = %q, want abc123", req.ContentSHA256)
		}
		_ = json.NewEncoder(w).Encode(scanResponse{Verdict: "clean"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "scan-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	verdict, err := client.Scan(context.Background(), "s3://bucket/doc", "abc123")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if verdict.Status != domain.ScanClean {
		t.Fatalf("status = %q, want clean", verdict.Status)
	}
	if gotAuth != "Bearer scan-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestScan_InfectedVerdictCarriesSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(scanResponse{Verdict: "infected", Signature: "EICAR-Test"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	verdict, err := client.Scan(context.Background(), "s3://bucket/doc", "abc123")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if verdict.Status != domain.ScanInfected {
		t.Fatalf("status = %q, want infected", verdict.Status)
	}
	if verdict.Signature != "EICAR-Test" {
		t.Fatalf("signature = %q", verdict.Signature)
	}
}

func TestScan_ServerErrorIsScanError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Scan(context.Background(), "s3://bucket/doc", "abc123"); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("", "key"); err == nil {
		t.Fatal("expected error for empty url")
	}
}
