package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/model/knowledge"
	"github.com/zhouzirui/vetchat/internal/service/answer"
	"github.com/zhouzirui/vetchat/internal/service/feedback"
)

var generousLimits = config.LimitConfig{AskPerMinute: 100, FeedbackPerMinute: 100, GlobalPerHour: 100}

type failingAnswerer struct{}

func (failingAnswerer) AskQuestion(context.Context, string) (chat.Answer, error) {
	return chat.Answer{}, errors.New("index offline")
}

func setupRouter(t *testing.T, answers Answerer) *chi.Mux {
	t.Helper()
	store := feedback.NewFileStore(filepath.Join(t.TempDir(), "feedback.txt"))
	handler := New(answers, feedback.NewService(store, 1000), 500, generousLimits)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func defaultAnswerer() Answerer {
	return answer.NewService(knowledge.NewMemoryStore(knowledge.Seed()), 3, 500, nil)
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAskReturnsAnswer(t *testing.T) {
	r := setupRouter(t, defaultAnswerer())
	resp := post(r, "/ask", map[string]string{"query": "my cow has bloat"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body chat.Answer
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.Response, "**Bloat") {
		t.Fatalf("unexpected response: %q", body.Response)
	}
}

func TestAskRejectsInvalidQuery(t *testing.T) {
	r := setupRouter(t, defaultAnswerer())

	for _, query := range []string{"", strings.Repeat("a", 501)} {
		resp := post(r, "/ask", map[string]string{"query": query})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %d chars, got %d", len(query), resp.Code)
		}
		if !strings.Contains(resp.Body.String(), "max 500 characters") {
			t.Fatalf("unexpected body: %s", resp.Body.String())
		}
	}
}

func TestAskHidesInternalErrors(t *testing.T) {
	r := setupRouter(t, failingAnswerer{})
	resp := post(r, "/ask", map[string]string{"query": "bloat"})

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "index offline") {
		t.Fatal("internal error leaked to client")
	}
}

func TestFeedback(t *testing.T) {
	r := setupRouter(t, defaultAnswerer())

	resp := post(r, "/feedback", map[string]string{"feedback": "great bot"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result chat.FeedbackResult
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	if !result.Success || result.Message != feedback.MessageThanks {
		t.Fatalf("unexpected result: %+v", result)
	}

	resp = post(r, "/feedback", map[string]string{"feedback": ""})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	resp = post(r, "/feedback", map[string]string{"feedback": strings.Repeat("x", 1001)})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for long feedback, got %d", resp.Code)
	}
}

func TestAskRateLimited(t *testing.T) {
	store := feedback.NewFileStore(filepath.Join(t.TempDir(), "feedback.txt"))
	handler := New(defaultAnswerer(), feedback.NewService(store, 1000), 500, config.LimitConfig{AskPerMinute: 1, FeedbackPerMinute: 1})
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	if resp := post(r, "/ask", map[string]string{"query": "bloat"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := post(r, "/ask", map[string]string{"query": "bloat"}); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
}
