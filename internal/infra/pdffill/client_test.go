package pdffill

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

func TestFill_SendsAuthorizedRequest(t *testing.T) {
	pdfBytes := []byte("%PDF-1.7 fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fill-pdf" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer pdf-secret" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		var req fillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.FormType != "I-130" || !req.Flatten {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("X-Fill-Stats", `{"filled": 2, "total": 3, "errors": ["no match: extra"]}`)
		_, _ = w.Write(pdfBytes)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Fill(context.Background(), domain.FormI130, map[string]string{
		"form1.Pt1Line1_FamilyName": "Reyes",
		"form1.Pt1Line2_GivenName":  "Ana",
	}, true)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if string(result.PDF) != string(pdfBytes) {
		t.Fatal("pdf bytes mismatch")
	}
	if result.Stats.Filled != 2 || result.Stats.Total != 3 || len(result.Stats.Errors) != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
}

func TestFill_RejectsUnknownFormBeforeCalling(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	client, err := NewClient(server.URL, "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Fill(context.Background(), "X-1", nil, false); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Fatal("service should not be called for an unknown form")
	}
}

func TestFill_RejectsUnsafeFieldNames(t *testing.T) {
	client, err := NewClient("http://localhost:1", "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Fill(context.Background(), domain.FormI485, map[string]string{"bad name": "x"}, false)
	if err == nil {
		t.Fatal("expected error for unsafe field name")
	}
}

func TestFill_OversizedPayload(t *testing.T) {
	client, err := NewClient("http://localhost:1", "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	fields := map[string]string{"form1.BigField": strings.Repeat("a", maxBodyBytes)}
	if _, err := client.Fill(context.Background(), domain.FormI765, fields, false); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

func TestFill_ServiceErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template missing"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Fill(context.Background(), domain.FormN400, map[string]string{"form1.A": "x"}, false); err == nil {
		t.Fatal("expected error")
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Templates: []string{"i-130.pdf"}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "pdf-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	templates, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if len(templates) != 1 || templates[0] != "i-130.pdf" {
		t.Fatalf("templates = %v", templates)
	}
}
