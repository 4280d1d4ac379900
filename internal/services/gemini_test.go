package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
)

func newStubGemini(t *testing.T, handler http.HandlerFunc) GeminiService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.GeminiConfig{
		APIKey:     "test",
		Model:      "test-model",
		EmbedModel: "test-embed",
		MaxRetries: 2,
		Timeout:    5 * time.Second,
	}

	svc, err := NewGeminiService(context.Background(), cfg, zap.NewNop(), WithHTTPOptions(server.URL, server.Client()))
	require.NoError(t, err)
	return svc
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
}

func TestGeminiService_GenerateText(t *testing.T) {
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		writeText(w, `{"score": 4, "feedback": "solid"}`)
	})

	text, err := svc.GenerateText(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 4, "feedback": "solid"}`, text)
}

func TestGeminiService_EmptyResponse(t *testing.T) {
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "")
	})

	_, err := svc.GenerateText(context.Background(), "prompt", 0)
	assert.Error(t, err)
}

func TestGeminiService_RetryRecovers(t *testing.T) {
	var calls int32
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "400 bad request", http.StatusBadRequest)
			return
		}
		writeText(w, "devops")
	})

	text, err := svc.GenerateTextWithRetry(context.Background(), "prompt", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "devops", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGeminiService_RetryGivesUp(t *testing.T) {
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "400 bad request", http.StatusBadRequest)
	})

	_, err := svc.GenerateTextWithRetry(context.Background(), "prompt", 0, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
}

func TestGeminiService_GenerateEmbedding(t *testing.T) {
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v1beta/models/test-embed:"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": []map[string]any{{"values": []float32{0.5, 0.25}}},
		})
	})

	vec, err := svc.GenerateEmbedding(context.Background(), "devops")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestGeminiService_EmbeddingInputCappedByRunes(t *testing.T) {
	var body string
	svc := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": []map[string]any{{"values": []float32{1}}},
		})
	})

	_, err := svc.GenerateEmbedding(context.Background(), strings.Repeat("é", embedInputMaxRunes+10))
	require.NoError(t, err)

	assert.Equal(t, embedInputMaxRunes, strings.Count(body, "é"))
	assert.NotContains(t, body, "\ufffd")
	assert.NotContains(t, body, "\uFFFD")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))

	cut := truncateRunes(strings.Repeat("日本", 5), 3)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "日本日", cut)
}
