package archive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 is a minimal in-memory S3 stand-in: enough of PutObject/GetObject
// for Store's round trip, addressed through s3.Options.BaseEndpoint so the
// SDK client never leaves the process.
func fakeS3(t *testing.T) (*s3.Client, func()) {
	t.Helper()
	objects := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		switch r.Method {
		case http.MethodPut:
			body := make([]byte, r.ContentLength)
			_, _ = r.Body.Read(body)
			objects[key] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		UsePathStyle: true,
		BaseEndpoint: aws.String(srv.URL),
		Credentials:  credentials.NewStaticCredentialsProvider("k", "s", ""),
	})
	return client, srv.Close
}

func TestStoreArchiveAndFetchRoundTrip(t *testing.T) {
	client, closeFn := fakeS3(t)
	defer closeFn()
	store := NewStore(client, "outreach-archive")

	payload := map[string]any{"front_html": strings.Repeat("x", 100), "note": "oversized piece"}
	key, err := store.Archive(context.Background(), "org-1", "psc_123", payload)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !strings.HasPrefix(key, "direct-mail-pieces/org-1/psc_123-") {
		t.Errorf("key = %q, want direct-mail-pieces/org-1/psc_123-<uuid>.json prefix", key)
	}

	got, err := store.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got["note"] != "oversized piece" {
		t.Errorf("Fetch round trip = %+v, missing expected field", got)
	}
}

func TestShouldArchiveComparesEncodedSizeAgainstThreshold(t *testing.T) {
	small := map[string]any{"a": "b"}
	if ShouldArchive(small) {
		t.Error("a tiny payload should not be archived")
	}

	big := map[string]any{"blob": strings.Repeat("x", MaxInlinePayloadBytes+1)}
	if !ShouldArchive(big) {
		t.Error("a payload over the inline threshold should be archived")
	}
}

func TestShouldArchiveEncodesConsistentlyWithArchive(t *testing.T) {
	payload := map[string]any{"blob": strings.Repeat("y", MaxInlinePayloadBytes*2)}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(body) <= MaxInlinePayloadBytes {
		t.Fatalf("test payload not actually oversized: %d bytes", len(body))
	}
	if !ShouldArchive(payload) {
		t.Error("ShouldArchive should agree with the raw encoded size check")
	}
}
