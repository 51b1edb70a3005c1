package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T, responseText string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.URL.Query().Get("key"))

		if status >= 300 {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": responseText}}}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, zerolog.Nop())
}

func TestGenerateParsesVariantTags(t *testing.T) {
	srv := stubServer(t, "<variant> Paris\n<variant> London\n<variant> Berlin\n<variant> Madrid", http.StatusOK)

	variants, err := newTestClient(srv).Generate(context.Background(), "Capital of France?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "London", "Berlin", "Madrid"}, variants)
}

func TestGenerateTrimsPreamble(t *testing.T) {
	// Models sometimes prepend chatter before the first tag; segments are
	// kept in order and trailing empties are dropped.
	srv := stubServer(t, "Sure, here you go:<variant>4<variant>3<variant>5<variant>22<variant>", http.StatusOK)

	variants, err := newTestClient(srv).Generate(context.Background(), "2+2?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sure, here you go:", "4", "3", "5"}, variants[:4])
	assert.Len(t, variants, 4)
}

func TestGenerateRejectsShortResponse(t *testing.T) {
	srv := stubServer(t, "<variant> only one", http.StatusOK)

	_, err := newTestClient(srv).Generate(context.Background(), "2+2?")
	assert.Error(t, err)
}

func TestGenerateRejectsUpstreamError(t *testing.T) {
	srv := stubServer(t, "", http.StatusInternalServerError)

	_, err := newTestClient(srv).Generate(context.Background(), "2+2?")
	assert.Error(t, err)
}

func TestGenerateWithoutKeyReturnsPlaceholders(t *testing.T) {
	client := NewClient(Config{}, zerolog.Nop())

	variants, err := client.Generate(context.Background(), "2+2?")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderVariants, variants)
}
