package repository

import (
	"context"
	"database/sql"

	"github.com/mapacultural/eventos-sync/internal/model"
)

// LanguageRepo manages persistence for the linguagens dimension table.
type LanguageRepo struct {
	db *sql.DB
}

// NewLanguageRepo constructs a LanguageRepo with the given DB handle.
func NewLanguageRepo(db *sql.DB) *LanguageRepo {
	return &LanguageRepo{db: db}
}

// NamesIndex bulk-reads the whole table as nome → id for the resolver cache.
func (r *LanguageRepo) NamesIndex(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT nome, id FROM linguagens`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]int64)
	for rows.Next() {
		var nome string
		var id int64
		if err := rows.Scan(&nome, &id); err != nil {
			return nil, err
		}
		index[nome] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return index, nil
}

// Insert stores a new language name and returns its generated id.
func (r *LanguageRepo) Insert(ctx context.Context, nome string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO linguagens (nome) VALUES (?)`, nome)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAll returns every language ordered by name, for the public listing
// endpoint and its filter dropdown.
func (r *LanguageRepo) ListAll(ctx context.Context) ([]model.Language, error) {
	const q = `SELECT id, nome FROM linguagens ORDER BY nome ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Nome); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
