package hooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeployClient_Trigger(t *testing.T) {
	var gotBody deployRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "build-42"})
	}))
	defer server.Close()

	client := NewDeployClient(server.URL, 5*time.Second)

	buildID, err := client.Trigger(context.Background(), "Scheduled publish: Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buildID != "build-42" {
		t.Errorf("expected build id build-42, got %q", buildID)
	}
	if gotBody.TriggerTitle != "Scheduled publish: Hello" {
		t.Errorf("unexpected trigger title: %q", gotBody.TriggerTitle)
	}
}

func TestDeployClient_Trigger_EmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewDeployClient(server.URL, 5*time.Second)

	buildID, err := client.Trigger(context.Background(), "msg")
	if err != nil {
		t.Fatalf("empty response body should not fail the trigger: %v", err)
	}
	if buildID != "" {
		t.Errorf("expected empty build id, got %q", buildID)
	}
}

func TestDeployClient_Trigger_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewDeployClient(server.URL, 5*time.Second)

	if _, err := client.Trigger(context.Background(), "msg"); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestDeployClient_NotConfigured(t *testing.T) {
	client := NewDeployClient("", 5*time.Second)

	if client.Configured() {
		t.Error("empty URL should report not configured")
	}
	if _, err := client.Trigger(context.Background(), "msg"); err == nil {
		t.Fatal("expected error when URL is not configured")
	}
}

func TestWebhookSender_Send(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second)

	err := sender.Send(context.Background(), map[string]string{"type": "content_published"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["type"] != "content_published" {
		t.Errorf("payload not delivered, got %v", got)
	}
}

func TestWebhookSender_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second)

	if err := sender.Send(context.Background(), map[string]string{}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestCachePurger_Purge(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	purger := NewCachePurger(server.URL, 5*time.Second)

	if err := purger.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("purge endpoint was not called")
	}
}
