package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultEndpoint = "https://www.google-analytics.com/mp/collect"

// Client sends fire-and-forget events to the GA4 Measurement Protocol.
// When no measurement ID / API secret is configured every call is a no-op,
// and delivery failures are logged, never surfaced to callers.
type Client struct {
	endpoint      string
	measurementID string
	apiSecret     string
	clientID      string
	httpc         *http.Client
	log           *zap.SugaredLogger
}

func New(measurementID, apiSecret string, log *zap.SugaredLogger) *Client {
	return newClient(defaultEndpoint, measurementID, apiSecret, log)
}

func newClient(endpoint, measurementID, apiSecret string, log *zap.SugaredLogger) *Client {
	return &Client{
		endpoint:      endpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		clientID:      uuid.NewString(),
		httpc:         &http.Client{Timeout: 10 * time.Second},
		log:           log,
	}
}

func (c *Client) enabled() bool {
	return c.measurementID != "" && c.apiSecret != ""
}

// Track dispatches one event asynchronously.
func (c *Client) Track(event string, props map[string]any) {
	if !c.enabled() {
		return
	}
	go func() {
		if err := c.send(event, props); err != nil {
			c.log.Warnw("telemetry event dropped", "event", event, "error", err)
		}
	}()
}

func (c *Client) send(event string, props map[string]any) error {
	body := map[string]any{
		"client_id": c.clientID,
		"events": []map[string]any{
			{"name": event, "params": props},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s?measurement_id=%s&api_secret=%s", c.endpoint, c.measurementID, c.apiSecret)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("collect returned %d: %s", resp.StatusCode, string(bb))
	}
	return nil
}
