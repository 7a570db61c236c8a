package repository

import (
	"context"
	"database/sql"
	"strings"
)

// EventFilter defines filters & pagination for the public event listing.
// Periodo takes "futuros", "passados" or "todos" (default).
type EventFilter struct {
	Municipio string
	Linguagem string
	Periodo   string
	Page      int
	Limit     int
}

// EventRow is one row of the public event listing, with the event's language
// names concatenated into a single display string.
type EventRow struct {
	ID                  int64    `json:"id"`
	ExternalID          int64    `json:"external_id"`
	Nome                string   `json:"nome"`
	Descricao           *string  `json:"descricao"`
	Local               *string  `json:"local"`
	LocalNome           *string  `json:"local_nome"`
	Municipio           string   `json:"municipio"`
	CEP                 *string  `json:"cep"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	Telefone            *string  `json:"telefone"`
	Email               *string  `json:"email"`
	Site                *string  `json:"site"`
	Acessibilidade      bool     `json:"acessibilidade"`
	ClassificacaoEtaria *string  `json:"classificacao_etaria"`
	Tags                *string  `json:"tags"`
	DataInicio          *string  `json:"data_inicio"`
	DataFim             *string  `json:"data_fim"`
	HoraInicio          *string  `json:"hora_inicio"`
	HoraFim             *string  `json:"hora_fim"`
	Linguagens          *string  `json:"linguagens"`
}

// List returns one page of events matching the filter plus the total number
// of matching rows. Language names are aggregated per event; the linguagem
// filter matches events carrying that language.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]EventRow, int64, error) {
	where := []string{}
	args := []any{}

	if f.Municipio != "" {
		where = append(where, "e.municipio = ?")
		args = append(args, f.Municipio)
	}
	if f.Linguagem != "" {
		where = append(where, "l.nome = ?")
		args = append(args, f.Linguagem)
	}
	switch f.Periodo {
	case "futuros":
		where = append(where, "e.data_inicio >= NOW()")
	case "passados":
		where = append(where, "e.data_fim < NOW()")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	// The count joins the language tables only when the linguagem filter
	// needs them.
	countSQL := `SELECT COUNT(DISTINCT e.id) FROM eventos e`
	if f.Linguagem != "" {
		countSQL += ` LEFT JOIN eventos_linguagens el ON e.id = el.evento_id
			LEFT JOIN linguagens l ON el.linguagem_id = l.id`
	}
	countSQL += ` WHERE ` + cond

	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	offset := (f.Page - 1) * f.Limit

	dataSQL := `SELECT
			e.id, e.external_id, e.nome, e.descricao, e.local, e.local_nome,
			e.municipio, e.cep, e.latitude, e.longitude, e.telefone, e.email,
			e.site, e.acessibilidade, e.classificacao_etaria, e.tags,
			DATE_FORMAT(e.data_inicio, '%Y-%m-%d %T') AS data_inicio,
			DATE_FORMAT(e.data_fim, '%Y-%m-%d %T') AS data_fim,
			e.hora_inicio, e.hora_fim,
			GROUP_CONCAT(DISTINCT l.nome SEPARATOR ', ') AS linguagens
		FROM eventos e
		LEFT JOIN eventos_linguagens el ON e.id = el.evento_id
		LEFT JOIN linguagens l ON el.linguagem_id = l.id
		WHERE ` + cond + `
		GROUP BY e.id
		ORDER BY e.nome ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]EventRow, 0, limit)
	for rows.Next() {
		row, err := scanEventRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanEventRow(rows *sql.Rows) (EventRow, error) {
	var e EventRow
	var descricao, local, localNome, cep, telefone, email, site sql.NullString
	var classificacao, tags, dataInicio, dataFim, horaInicio, horaFim, linguagens sql.NullString
	var latitude, longitude sql.NullFloat64

	if err := rows.Scan(
		&e.ID, &e.ExternalID, &e.Nome, &descricao, &local, &localNome,
		&e.Municipio, &cep, &latitude, &longitude, &telefone, &email,
		&site, &e.Acessibilidade, &classificacao, &tags,
		&dataInicio, &dataFim, &horaInicio, &horaFim, &linguagens,
	); err != nil {
		return EventRow{}, err
	}

	e.Descricao = nullStr(descricao)
	e.Local = nullStr(local)
	e.LocalNome = nullStr(localNome)
	e.CEP = nullStr(cep)
	e.Telefone = nullStr(telefone)
	e.Email = nullStr(email)
	e.Site = nullStr(site)
	e.ClassificacaoEtaria = nullStr(classificacao)
	e.Tags = nullStr(tags)
	e.DataInicio = nullStr(dataInicio)
	e.DataFim = nullStr(dataFim)
	e.HoraInicio = nullStr(horaInicio)
	e.HoraFim = nullStr(horaFim)
	e.Linguagens = nullStr(linguagens)
	if latitude.Valid {
		e.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		e.Longitude = &longitude.Float64
	}
	return e, nil
}

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
