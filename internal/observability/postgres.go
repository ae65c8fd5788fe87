package observability

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// PostgresSnapshotWriter persists MetricsSnapshot rows (§3 DATA MODEL).
type PostgresSnapshotWriter struct {
	db *sql.DB
}

func NewPostgresSnapshotWriter(db *sql.DB) *PostgresSnapshotWriter {
	return &PostgresSnapshotWriter{db: db}
}

func (w *PostgresSnapshotWriter) SaveSnapshot(ctx context.Context, source, requestID string, counters map[string]int) error {
	countersJSON := make(map[string]any, len(counters))
	for k, v := range counters {
		countersJSON[k] = v
	}
	payload, err := jsonutil.Encode(countersJSON)
	if err != nil {
		return err
	}
	_, err = w.db.ExecContext(ctx,
		`INSERT INTO metrics_snapshots (id, source, request_id, counters, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		uuid.New().String(), source, requestID, payload,
	)
	return err
}
