package llmquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/supplysync/supplysync-backend/pkg/config"
)

func TestOllamaClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "mistral" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}
		if !strings.Contains(req.Prompt, "What products cost under 50 dollars?") {
			t.Error("prompt does not carry the question")
		}
		json.NewEncoder(w).Encode(generateResponse{
			Response: `db.Products.find({"Price": {"$lt": 50}})`,
			Done:     true,
		})
	}))
	defer server.Close()

	client, err := NewOllamaClient(config.LLMConfig{GenerateURL: server.URL, Model: "mistral"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	got, err := client.Generate(context.Background(), BuildPrompt("What products cost under 50 dollars?"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `db.Products.find({"Price": {"$lt": 50}})` {
		t.Fatalf("response = %q", got)
	}
}

func TestOllamaClientGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewOllamaClient(config.LLMConfig{GenerateURL: server.URL, Model: "mistral"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestOllamaClientGenerateHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	client, err := NewOllamaClient(config.LLMConfig{GenerateURL: server.URL, Model: "mistral"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.Generate(ctx, "prompt"); err == nil {
		t.Fatal("expected a deadline error")
	}
}

func TestNewOllamaClientValidation(t *testing.T) {
	if _, err := NewOllamaClient(config.LLMConfig{Model: "mistral"}); err == nil {
		t.Fatal("expected an error for a missing url")
	}
	if _, err := NewOllamaClient(config.LLMConfig{GenerateURL: "http://localhost:11434/api/generate"}); err == nil {
		t.Fatal("expected an error for a missing model")
	}
}
