package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xaenox/faq-bot/internal/ai"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/matcher"
	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

type stubResponder struct {
	response string
}

func (s *stubResponder) Complete(ctx context.Context, turns []ai.Turn) (string, error) {
	return s.response, nil
}

func newTestServer(t *testing.T) (*Server, *storage.MemoryStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	logger := zap.NewNop()
	m := matcher.New(store, 0, logger)
	eng := engine.New(store, m, &stubResponder{response: "generated answer"}, 0, logger)
	return New(eng, store, logger), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSendMessage(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/chat/send", map[string]any{
		"content":         "hello there",
		"user_identifier": "user-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result models.ResolutionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ConversationID == "" || result.MessageID == "" {
		t.Errorf("result = %+v", result)
	}
	if result.Source != models.SourceAI || result.Response != "generated answer" {
		t.Errorf("source = %q, response = %q", result.Source, result.Response)
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/chat/send", map[string]any{
		"content":         "hello",
		"conversation_id": "missing",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendMessageValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/chat/send", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFeedbackStatusCodes(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	conv, _ := store.CreateConversation(ctx, "user-1", "web")
	msg, _ := store.AppendMessage(ctx, conv.ID, models.RoleAssistant, "answer")

	w := doJSON(t, s, http.MethodPost, "/api/chat/feedback", map[string]any{
		"message_id": msg.ID,
		"is_helpful": true,
		"comment":    "great",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first feedback status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/chat/feedback", map[string]any{
		"message_id": msg.ID,
		"is_helpful": false,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate feedback status = %d, want 409", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/api/chat/feedback", map[string]any{
		"message_id": "missing",
		"is_helpful": true,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown message status = %d, want 404", w.Code)
	}
}

func TestGetConversation(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	conv, _ := store.CreateConversation(ctx, "user-1", "web")
	store.AppendMessage(ctx, conv.ID, models.RoleUser, "hello")
	store.AppendMessage(ctx, conv.ID, models.RoleAssistant, "hi")

	w := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/chat/conversation/%s", conv.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var payload struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Conversation.ID != conv.ID || len(payload.Messages) != 2 {
		t.Errorf("payload = %+v", payload)
	}

	w = doJSON(t, s, http.MethodGet, "/api/chat/conversation/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing conversation status = %d, want 404", w.Code)
	}
}

func TestFAQEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/faq", map[string]any{
		"question": "reset password",
		"answer":   "Click 'forgot password'",
		"keywords": "reset,password",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var entry models.FAQEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}

	w = doJSON(t, s, http.MethodGet, "/api/faq/search?q=password", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var results []models.FAQEntry
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 1 || results[0].ID != entry.ID {
		t.Errorf("results = %+v", results)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/faq/"+entry.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/faq/"+entry.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}
