package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/internal/config"
	"voicegate/internal/models"
	"voicegate/internal/provider"
)

func newTestProvider(t *testing.T, upstream *httptest.Server) *Provider {
	t.Helper()
	p, err := New("brain-test", config.ProviderConfig{
		BaseURL: upstream.URL,
		Path:    "/webhook/widget",
	}, upstream.Client())
	require.NoError(t, err)
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestConverseSendsLatestUserTurn(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/widget", r.URL.Path)

		var req struct {
			Message   string `json:"message"`
			SessionID string `json:"sessionId"`
			Source    string `json:"source"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "second question", req.Message)
		assert.Equal(t, "adaqua-42", req.SessionID)
		assert.Equal(t, eventSource, req.Source)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"answer from flow"}`))
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream)
	reply, err := p.Converse(context.Background(), models.ConverseRequest{
		SessionID: "adaqua-42",
		Messages: []models.Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
			{Role: "user", Content: "second question"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "answer from flow", reply.Text)
}

func TestConverseNormalizesAlternateFields(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"from response field"}`))
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream)
	reply, err := p.Converse(context.Background(), models.ConverseRequest{
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "from response field", reply.Text)
}

func TestConverseBadStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow disabled", http.StatusNotFound)
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream)
	_, err := p.Converse(context.Background(), models.ConverseRequest{
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})

	var statusErr *provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestLatestUserMessage(t *testing.T) {
	assert.Equal(t, "", latestUserMessage(nil))
	assert.Equal(t, "only", latestUserMessage([]models.Message{{Role: "assistant", Content: "only"}}))
	assert.Equal(t, "b", latestUserMessage([]models.Message{
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "assistant", Content: "c"},
	}))
}
