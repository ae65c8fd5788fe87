// Package provideradapter implements the per-provider HTTP clients
// described in §4.3. Every adapter is stateless and constructed from
// (api_key, instance_url); none of them write to local state — upserts
// into domain tables are the caller's job (projection engine,
// reconciliation runner, domain write services).
package provideradapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ignite/outreach-gateway/internal/pkg/httpretry"
	"github.com/ignite/outreach-gateway/internal/providererr"
)

const (
	retryBaseDelay = 250 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
	retryAttempts  = 3
)

// Credentials are the tenant-scoped credentials an adapter is constructed
// from. Never cached across requests — a fresh adapter is built per call
// from the organization row (§5).
type Credentials struct {
	APIKey      string
	InstanceURL string
	ClientID    string
}

// baseClient implements the shared per-call contract: build the concrete
// URL (trying candidate paths when the deployment is inconsistent), apply
// retry-with-jitter, parse JSON and unwrap {data: ...}, and raise the
// typed provider error on non-2xx or shape mismatch.
type baseClient struct {
	provider string
	creds    Credentials
	http     httpretry.HTTPDoer

	mu            sync.Mutex
	resolvedPaths map[string]string // operation -> winning candidate path prefix
}

func newBaseClient(provider string, creds Credentials, doer httpretry.HTTPDoer) *baseClient {
	if doer == nil {
		doer = httpretry.NewRetryClientWithBackoff(&http.Client{Timeout: 15 * time.Second}, retryAttempts, retryBaseDelay, retryMaxDelay)
	}
	return &baseClient{
		provider:      provider,
		creds:         creds,
		http:          doer,
		resolvedPaths: make(map[string]string),
	}
}

// candidatePaths is a fixed ordered list of URL prefixes to try for an
// operation whose deployments diverge. Providers with a single stable path
// scheme pass a single-element list.
type candidatePaths []string

// doJSON builds a request against the first candidate path that does not
// 404, applies the adapter's retry policy, and decodes the JSON response
// body, unwrapping a top-level {"data": ...} envelope if present. method,
// bodyObj, and query are optional (nil/empty to omit).
func (c *baseClient) doJSON(ctx context.Context, operation, method string, paths candidatePaths, query map[string]string, bodyObj any, headers map[string]string, out any) error {
	c.mu.Lock()
	resolved, haveResolved := c.resolvedPaths[operation]
	c.mu.Unlock()

	tryPaths := paths
	if haveResolved {
		tryPaths = candidatePaths{resolved}
	}

	var lastErr error
	for i, p := range tryPaths {
		url := strings.TrimRight(c.creds.InstanceURL, "/") + p
		if len(query) > 0 {
			q := make([]string, 0, len(query))
			for k, v := range query {
				q = append(q, k+"="+v)
			}
			url += "?" + strings.Join(q, "&")
		}

		var bodyReader io.Reader
		if bodyObj != nil {
			b, err := json.Marshal(bodyObj)
			if err != nil {
				return providererr.New(c.provider, operation, providererr.Terminal, "failed to encode request body", err)
			}
			bodyReader = bytes.NewReader(b)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return providererr.New(c.provider, operation, providererr.Terminal, "failed to build request", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.creds.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if bodyReader != nil {
			req.GetBody = func() (io.ReadCloser, error) {
				b, _ := json.Marshal(bodyObj)
				return io.NopCloser(bytes.NewReader(b)), nil
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = providererr.New(c.provider, operation, providererr.Classify(err, 0), "request failed", err)
			continue
		}

		if resp.StatusCode == http.StatusNotFound && len(tryPaths) > 1 && !haveResolved {
			resp.Body.Close()
			if i < len(tryPaths)-1 {
				continue
			}
			lastErr = providererr.New(c.provider, operation, providererr.Terminal, "no candidate path resolved (all returned 404)", nil)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return providererr.New(c.provider, operation, providererr.Classify(nil, resp.StatusCode),
				fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		}

		if !haveResolved {
			c.mu.Lock()
			c.resolvedPaths[operation] = p
			c.mu.Unlock()
		}

		if out == nil || len(body) == 0 {
			return nil
		}
		return decodeUnwrapped(body, out, c.provider, operation)
	}
	if lastErr != nil {
		return lastErr
	}
	return providererr.New(c.provider, operation, providererr.Unknown, "no candidate path available", nil)
}

// decodeUnwrapped decodes JSON, unwrapping a top-level {"data": ...}
// envelope if the raw response has one.
func decodeUnwrapped(body []byte, out any, provider, operation string) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		body = envelope.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return providererr.New(provider, operation, providererr.Terminal, "response shape mismatch", err)
	}
	return nil
}

// IdempotencyMaterial resolves the idempotency contract for direct-mail
// piece creation: an Idempotency-Key header XOR an idempotency_key query
// parameter. Supplying both is a terminal error raised before any HTTP
// call is made.
type IdempotencyMaterial struct {
	HeaderKey string
	QueryKey  string
}

func (m IdempotencyMaterial) resolve(provider, operation string) (headers map[string]string, query map[string]string, err error) {
	if m.HeaderKey != "" && m.QueryKey != "" {
		return nil, nil, providererr.New(provider, operation, providererr.Terminal, "idempotency_key_conflict: both header and query parameter supplied", nil)
	}
	if m.HeaderKey != "" {
		return map[string]string{"Idempotency-Key": m.HeaderKey}, nil, nil
	}
	if m.QueryKey != "" {
		return nil, map[string]string{"idempotency_key": m.QueryKey}, nil
	}
	return nil, nil, nil
}
