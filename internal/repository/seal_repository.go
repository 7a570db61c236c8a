package repository

import (
	"context"
	"database/sql"

	"github.com/mapacultural/eventos-sync/internal/model"
)

// SealRepo manages persistence for the selos dimension table.
type SealRepo struct {
	db *sql.DB
}

// NewSealRepo constructs a SealRepo with the given DB handle.
func NewSealRepo(db *sql.DB) *SealRepo {
	return &SealRepo{db: db}
}

// All bulk-reads the whole table for the resolver caches.
func (r *SealRepo) All(ctx context.Context) ([]model.Seal, error) {
	const q = `SELECT id, external_id, nome, descricao FROM selos`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seal
	for rows.Next() {
		s, err := scanSeal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores a new seal and assigns the generated id back to s.
func (r *SealRepo) Insert(ctx context.Context, s *model.Seal) (int64, error) {
	const q = `INSERT INTO selos (external_id, nome, descricao, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())`
	res, err := r.db.ExecContext(ctx, q, s.ExternalID, s.Nome, s.Descricao)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// Update rewrites external_id, nome and descricao of the row s.ID. It is
// used both for the opportunistic refresh during event sync and for
// attaching an external id to a seal that was first seen by name only.
func (r *SealRepo) Update(ctx context.Context, s *model.Seal) error {
	const q = `UPDATE selos SET external_id = ?, nome = ?, descricao = ?, updated_at = NOW()
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.ExternalID, s.Nome, s.Descricao, s.ID)
	return err
}

// ListOrdered returns all seals ordered by name for the public listing.
func (r *SealRepo) ListOrdered(ctx context.Context) ([]model.Seal, error) {
	const q = `SELECT id, external_id, nome, descricao FROM selos ORDER BY nome ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seal
	for rows.Next() {
		s, err := scanSeal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanSeal(rows *sql.Rows) (model.Seal, error) {
	var s model.Seal
	var externalID sql.NullInt64
	var descricao sql.NullString
	if err := rows.Scan(&s.ID, &externalID, &s.Nome, &descricao); err != nil {
		return model.Seal{}, err
	}
	if externalID.Valid {
		s.ExternalID = &externalID.Int64
	}
	if descricao.Valid {
		s.Descricao = &descricao.String
	}
	return s, nil
}
