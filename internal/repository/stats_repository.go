package repository

import (
	"context"
	"database/sql"
)

// StatsRepo computes the aggregate views served by the stats endpoint.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Overview holds the headline counters of the mirrored catalog.
type Overview struct {
	TotalEventos    int64 `json:"total_eventos"`
	TotalMunicipios int64 `json:"total_municipios"`
	TotalLinguagens int64 `json:"total_linguagens"`
	EventosFuturos  int64 `json:"eventos_futuros"`
}

// Distribution is one bucket of a grouped count (per language or per
// municipality).
type Distribution struct {
	Nome  string `json:"nome"`
	Total int64  `json:"total"`
}

// Overview computes the headline counters in a single query.
func (r *StatsRepo) Overview(ctx context.Context) (Overview, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM eventos),
		(SELECT COUNT(DISTINCT municipio) FROM eventos),
		(SELECT COUNT(*) FROM linguagens),
		(SELECT COUNT(*) FROM eventos WHERE data_inicio >= NOW())`
	var o Overview
	err := r.db.QueryRowContext(ctx, q).Scan(
		&o.TotalEventos, &o.TotalMunicipios, &o.TotalLinguagens, &o.EventosFuturos)
	return o, err
}

// ByLanguage returns event counts grouped by language, largest first.
func (r *StatsRepo) ByLanguage(ctx context.Context) ([]Distribution, error) {
	const q = `SELECT l.nome, COUNT(el.evento_id) AS total
		FROM linguagens l
		LEFT JOIN eventos_linguagens el ON el.linguagem_id = l.id
		GROUP BY l.id
		ORDER BY total DESC, l.nome ASC`
	return r.distribution(ctx, q)
}

// ByMunicipio returns event counts grouped by municipality, largest first.
func (r *StatsRepo) ByMunicipio(ctx context.Context) ([]Distribution, error) {
	const q = `SELECT municipio, COUNT(*) AS total
		FROM eventos
		GROUP BY municipio
		ORDER BY total DESC, municipio ASC`
	return r.distribution(ctx, q)
}

func (r *StatsRepo) distribution(ctx context.Context, q string) ([]Distribution, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Distribution
	for rows.Next() {
		var d Distribution
		if err := rows.Scan(&d.Nome, &d.Total); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
