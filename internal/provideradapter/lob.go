package provideradapter

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/pkg/httpretry"
)

// LobAdapter implements DirectMailAdapter against the Lob direct-mail API.
// Lob is the only provider requiring the Idempotency-Key/idempotency_key
// contract at the piece-creation call (§4.3, §4.14); all other operations
// are plain reads.
type LobAdapter struct {
	base *baseClient
}

func NewLobAdapter(creds Credentials, doer httpretry.HTTPDoer) *LobAdapter {
	return &LobAdapter{base: newBaseClient("lob", creds, doer)}
}

// lobPieceTypePaths maps a domain piece type to Lob's resource path. Lob
// models each piece type as a distinct top-level resource rather than a
// single /pieces collection with a type field.
var lobPieceTypePaths = map[string]string{
	"postcard":    "/v1/postcards",
	"letter":      "/v1/letters",
	"self_mailer": "/v1/self_mailers",
	"check":       "/v1/checks",
}

func (a *LobAdapter) CreatePiece(ctx context.Context, pieceType string, fields map[string]any, idem IdempotencyMaterial) (PieceRecord, error) {
	path, ok := lobPieceTypePaths[pieceType]
	if !ok {
		return PieceRecord{}, fmt.Errorf("provideradapter: unknown lob piece type %q", pieceType)
	}
	headers, query, err := idem.resolve("lob", "create_piece")
	if err != nil {
		return PieceRecord{}, err
	}
	var raw map[string]any
	if err := a.base.doJSON(ctx, "create_piece", "POST", candidatePaths{path}, query, fields, headers, &raw); err != nil {
		return PieceRecord{}, err
	}
	return pieceRecordFromRaw(raw), nil
}

func (a *LobAdapter) ListPieces(ctx context.Context, limit, offset int) ([]PieceRecord, error) {
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	err := a.base.doJSON(ctx, "list_pieces", "GET", candidatePaths{"/v1/postcards"},
		map[string]string{"limit": fmt.Sprintf("%d", limit), "offset": fmt.Sprintf("%d", offset)},
		nil, nil, &resp)
	if err != nil {
		return nil, err
	}
	return pieceRecordsFromRaw(resp.Data), nil
}

func (a *LobAdapter) GetPiece(ctx context.Context, externalPieceID string) (PieceRecord, error) {
	var raw map[string]any
	paths := candidatePaths{"/v1/postcards/" + externalPieceID, "/v1/letters/" + externalPieceID, "/v1/self_mailers/" + externalPieceID, "/v1/checks/" + externalPieceID}
	if err := a.base.doJSON(ctx, "get_piece", "GET", paths, nil, nil, nil, &raw); err != nil {
		return PieceRecord{}, err
	}
	return pieceRecordFromRaw(raw), nil
}

func (a *LobAdapter) CancelPiece(ctx context.Context, externalPieceID string) error {
	paths := candidatePaths{"/v1/postcards/" + externalPieceID + "/cancel", "/v1/letters/" + externalPieceID + "/cancel"}
	return a.base.doJSON(ctx, "cancel_piece", "DELETE", paths, nil, nil, nil, nil)
}

func pieceRecordFromRaw(row map[string]any) PieceRecord {
	return PieceRecord{
		ExternalID: toString(firstOf(row, "id")),
		Status:     toString(firstOf(row, "status", "delivery_status")),
		Raw:        row,
	}
}
