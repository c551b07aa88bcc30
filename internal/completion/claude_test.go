// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/insight-engine/internal/retry"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func init() {
	retry.BaseDelay = time.Millisecond
}

func claudeTestClient(ts *httptest.Server) *ClaudeClient {
	c := NewClaudeClient(types.AIConfig{APIKey: "test-key", Model: "test-model"})
	c.client = ts.Client()
	return c
}

func TestClaudeComplete(t *testing.T) {
	var gotReq claudeRequest
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "hello "}, {"type": "text", "text": "world"}]}`)
	}))
	defer ts.Close()
	claudeAPIURL = ts.URL

	out, err := claudeTestClient(ts).Complete(context.Background(), "you are terse", "say hello", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello world" {
		t.Errorf("out = %q", out)
	}
	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotReq.System != "you are terse" {
		t.Errorf("system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "say hello" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestClaudeCompleteJSONOnlyConstrainsSystemPrompt(t *testing.T) {
	var gotReq claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "{}"}]}`)
	}))
	defer ts.Close()
	claudeAPIURL = ts.URL

	_, err := claudeTestClient(ts).Complete(context.Background(), "base", "extract tags", true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(gotReq.System, "single JSON document") {
		t.Errorf("jsonOnly must constrain the system prompt; got %q", gotReq.System)
	}
}

func TestClaudeCompleteRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "ok"}]}`)
	}))
	defer ts.Close()
	claudeAPIURL = ts.URL

	out, err := claudeTestClient(ts).Complete(context.Background(), "", "hi", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("out = %q, calls = %d", out, calls)
	}
}

func TestClaudeCompleteNonRetryableError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	claudeAPIURL = ts.URL

	_, err := claudeTestClient(ts).Complete(context.Background(), "", "hi", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1 (400 is not retryable)", calls)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), types.AIConfig{Provider: "claude"}); err == nil {
		t.Error("expected configuration error for missing API key")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), types.AIConfig{Provider: "llama", APIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "unknown completion provider") {
		t.Errorf("err = %v", err)
	}
}
