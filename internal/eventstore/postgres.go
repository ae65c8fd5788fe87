package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// PostgresStore implements Store against PostgreSQL, relying on a unique
// index on (provider_slug, event_key) to enforce the idempotency
// invariant.
type PostgresStore struct{ db *sql.DB }

// NewPostgresStore creates a Postgres-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const eventColumns = `id, provider_slug, event_key, event_type, status, payload,
	replay_count, last_replay_at, last_error, org_id, company_id, created_at, processed_at`

func (s *PostgresStore) Insert(ctx context.Context, event *domain.WebhookEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	payload, err := jsonutil.Encode(event.Payload)
	if err != nil {
		return "", fmt.Errorf("encode event payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO webhook_events
			(id, provider_slug, event_key, event_type, status, payload, org_id, company_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
	`, event.ID, event.ProviderSlug, event.EventKey, event.EventType, event.Status, payload,
		event.OrgID, event.CompanyID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", ErrDuplicate
		}
		if strings.Contains(err.Error(), "duplicate key") {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("insert event: %w", err)
	}
	return event.ID, nil
}

func (s *PostgresStore) scanRow(row *sql.Row) (*domain.WebhookEvent, error) {
	e := &domain.WebhookEvent{}
	var payload []byte
	var lastReplayAt, processedAt sql.NullTime
	var lastErr, orgID, companyID sql.NullString
	err := row.Scan(&e.ID, &e.ProviderSlug, &e.EventKey, &e.EventType, &e.Status, &payload,
		&e.ReplayCount, &lastReplayAt, &lastErr, &orgID, &companyID, &e.CreatedAt, &processedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if e.Payload, err = jsonutil.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if lastReplayAt.Valid {
		e.LastReplayAt = &lastReplayAt.Time
	}
	if lastErr.Valid {
		e.LastError = &lastErr.String
	}
	if orgID.Valid {
		e.OrgID = &orgID.String
	}
	if companyID.Valid {
		e.CompanyID = &companyID.String
	}
	if processedAt.Valid {
		e.ProcessedAt = &processedAt.Time
	}
	return e, nil
}

func (s *PostgresStore) Get(ctx context.Context, providerSlug, eventKey string) (*domain.WebhookEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM webhook_events WHERE provider_slug = $1 AND event_key = $2`, providerSlug, eventKey)
	return s.scanRow(row)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.WebhookEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM webhook_events WHERE id = $1`, id)
	return s.scanRow(row)
}

func (s *PostgresStore) UpdateByKey(ctx context.Context, providerSlug, eventKey string, u UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.Payload != nil {
		payload, err := jsonutil.Encode(u.Payload)
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}
		add("payload", payload)
	}
	if u.ReplayCount != nil {
		add("replay_count", *u.ReplayCount)
	}
	if u.LastReplayAt != nil {
		add("last_replay_at", *u.LastReplayAt)
	}
	if u.LastError != nil {
		add("last_error", *u.LastError)
	}
	if u.ProcessedAt != nil {
		add("processed_at", *u.ProcessedAt)
	}
	if u.OrgID != nil {
		add("org_id", *u.OrgID)
	}
	if u.CompanyID != nil {
		add("company_id", *u.CompanyID)
	}
	if len(sets) == 0 {
		return nil
	}

	q := fmt.Sprintf(`UPDATE webhook_events SET %s WHERE provider_slug = $%d AND event_key = $%d`,
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, providerSlug, eventKey)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]domain.WebhookEvent, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1
	add := func(cond string, val interface{}) {
		where += fmt.Sprintf(" AND %s $%d", cond, idx)
		args = append(args, val)
		idx++
	}
	if f.ProviderSlug != "" {
		add("provider_slug =", f.ProviderSlug)
	}
	if f.EventType != "" {
		add("event_type =", f.EventType)
	}
	if f.OrgID != "" {
		add("org_id =", f.OrgID)
	}
	if f.Status != "" {
		add("status =", f.Status)
	}
	if f.Reason != "" {
		add("payload->'_dead_letter'->>'reason' =", f.Reason)
	}
	switch f.ReplayStatus {
	case "pending":
		where += " AND status = 'dead_letter'"
	case "replayed":
		where += " AND status = 'replayed'"
	}
	if !f.FromTS.IsZero() {
		add("created_at >=", f.FromTS)
	}
	if !f.ToTS.IsZero() {
		add("created_at <=", f.ToTS)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_events `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	q := fmt.Sprintf(`SELECT `+eventColumns+` FROM webhook_events %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	qArgs := append(append([]interface{}{}, args...), limit, f.Offset)
	rows, err := s.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.WebhookEvent
	for rows.Next() {
		var e domain.WebhookEvent
		var payload []byte
		var lastReplayAt, processedAt sql.NullTime
		var lastErr, orgID, companyID sql.NullString
		if err := rows.Scan(&e.ID, &e.ProviderSlug, &e.EventKey, &e.EventType, &e.Status, &payload,
			&e.ReplayCount, &lastReplayAt, &lastErr, &orgID, &companyID, &e.CreatedAt, &processedAt); err != nil {
			return nil, 0, fmt.Errorf("scan event row: %w", err)
		}
		e.Payload, _ = jsonutil.Decode(payload)
		if lastReplayAt.Valid {
			e.LastReplayAt = &lastReplayAt.Time
		}
		if lastErr.Valid {
			e.LastError = &lastErr.String
		}
		if orgID.Valid {
			e.OrgID = &orgID.String
		}
		if companyID.Valid {
			e.CompanyID = &companyID.String
		}
		if processedAt.Valid {
			e.ProcessedAt = &processedAt.Time
		}
		out = append(out, e)
	}
	return out, total, nil
}
