// Package archive ships oversized provider payloads to S3, repurposing the
// teacher's S3 client pattern (internal/storage's SaveToS3/GetFromS3) from
// asset storage to payload archival.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxInlinePayloadBytes is the json-encoded size above which a direct-mail
// piece's raw payload is archived to S3 instead of stored inline (§4.13 —
// Lob payloads can carry embedded PDFs/thumbnails).
const MaxInlinePayloadBytes = 32 * 1024

// Store archives oversized payloads to a single S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Archive uploads payload under a generated key and returns it. Callers
// store the key in place of the raw payload (domain.DirectMailPiece.
// ArchiveS3Key) and keep only a pointer in the local row.
func (s *Store) Archive(ctx context.Context, orgID, externalPieceID string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("archive: encode payload: %w", err)
	}
	key := fmt.Sprintf("direct-mail-pieces/%s/%s-%s.json", orgID, externalPieceID, uuid.New().String())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: put object: %w", err)
	}
	return key, nil
}

// Fetch retrieves a previously archived payload by its key.
func (s *Store) Fetch(ctx context.Context, key string) (map[string]any, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("archive: get object: %w", err)
	}
	defer out.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(out.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("archive: decode object %s: %w", key, err)
	}
	return payload, nil
}

// ShouldArchive reports whether payload's json-encoded size exceeds the
// inline-storage threshold.
func ShouldArchive(payload map[string]any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return len(body) > MaxInlinePayloadBytes
}
