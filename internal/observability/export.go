package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPExporter posts a snapshot to a configured sink with a bearer token
// and bounded timeout (§4.10).
type HTTPExporter struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPExporter constructs an exporter with a 10s bounded timeout,
// matching the rest of the gateway's short outbound-call budgets.
func NewHTTPExporter(url, token string) *HTTPExporter {
	return &HTTPExporter{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *HTTPExporter) Export(ctx context.Context, source, requestID string, counters map[string]int) error {
	body, err := json.Marshal(map[string]any{
		"source":     source,
		"request_id": requestID,
		"counters":   counters,
	})
	if err != nil {
		return fmt.Errorf("observability: encode export body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("observability: build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("observability: export request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("observability: export sink returned status %d", resp.StatusCode)
	}
	return nil
}
