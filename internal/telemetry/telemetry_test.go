package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendPostsMeasurementProtocolEvent(t *testing.T) {
	var gotQuery string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "G-TEST", "secret", zap.NewNop().Sugar())
	err := c.send("contact_form_submitted", map[string]any{
		"service_type":   "one-page",
		"has_phone":      true,
		"message_length": 28,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "measurement_id=G-TEST")
	assert.Contains(t, gotQuery, "api_secret=secret")

	var payload struct {
		ClientID string `json:"client_id"`
		Events   []struct {
			Name   string         `json:"name"`
			Params map[string]any `json:"params"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.NotEmpty(t, payload.ClientID)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "contact_form_submitted", payload.Events[0].Name)
	assert.Equal(t, "one-page", payload.Events[0].Params["service_type"])
	assert.Equal(t, true, payload.Events[0].Params["has_phone"])
	assert.Equal(t, float64(28), payload.Events[0].Params["message_length"])
}

func TestSendReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "G-TEST", "secret", zap.NewNop().Sugar())
	err := c.send("contact_form_submitted", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestTrackIsNoopWithoutCredentials(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := newClient(srv.URL, "", "", zap.NewNop().Sugar())
	c.Track("contact_form_submitted", nil)
	assert.False(t, hit)
}
