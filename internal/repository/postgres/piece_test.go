package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/repository"
)

func TestPieceRepoGetByExternalIDDecodesArchiveKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	rows := sqlmock.NewRows([]string{
		"id", "org_id", "company_id", "provider_id", "external_piece_id",
		"piece_type", "status", "send_date", "metadata", "raw_payload", "archive_s3_key",
		"created_at", "updated_at",
	}).AddRow("piece-1", "org-1", "co-1", "lob", "ext-1",
		domain.PieceTypePostcard, domain.PieceInTransit, now, []byte(`{"m":1}`), []byte(`{}`), "archive/key.json",
		now, now)

	mock.ExpectQuery("SELECT (.+) FROM direct_mail_pieces").
		WithArgs("org-1", "lob", "ext-1").
		WillReturnRows(rows)

	repo := NewPieceRepo(db)
	p, err := repo.GetByExternalID(context.Background(), "org-1", "lob", "ext-1")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if p.ArchiveS3Key != "archive/key.json" {
		t.Errorf("ArchiveS3Key = %q, want archive/key.json", p.ArchiveS3Key)
	}
	if p.SendDate == nil || !p.SendDate.Equal(now) {
		t.Errorf("SendDate = %v, want %v", p.SendDate, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPieceRepoGetByExternalIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM direct_mail_pieces").
		WithArgs("org-1", "lob", "missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewPieceRepo(db)
	if _, err := repo.GetByExternalID(context.Background(), "org-1", "lob", "missing"); err != repository.ErrNotFound {
		t.Errorf("GetByExternalID = %v, want ErrNotFound", err)
	}
}

func TestPieceRepoCreateGeneratesIDAndPassesNilArchiveKeyWhenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO direct_mail_pieces").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPieceRepo(db)
	id, err := repo.Create(context.Background(), &domain.DirectMailPiece{
		OrgID: "org-1", CompanyID: "co-1", ProviderSlug: "lob",
		ExternalPieceID: "ext-1", PieceType: domain.PieceTypePostcard, Status: domain.PieceQueued,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Error("expected a generated ID")
	}
}

func TestPieceRepoUpdateNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE direct_mail_pieces").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPieceRepo(db)
	err = repo.Update(context.Background(), "org-1", "missing", &domain.DirectMailPiece{Status: domain.PieceDelivered})
	if err != repository.ErrNotFound {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}

func TestNullableStringEmptyYieldsNil(t *testing.T) {
	if v := nullableString(""); v != nil {
		t.Errorf("nullableString(\"\") = %v, want nil", v)
	}
	if v := nullableString("x"); v != "x" {
		t.Errorf("nullableString(x) = %v, want x", v)
	}
}
