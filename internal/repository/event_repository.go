// Package repository contains the MySQL data access layer. Each repository
// wraps a *sql.DB; the event repository additionally implements the
// transactional surface the sync engine writes through.
package repository

import (
	"context"
	"database/sql"

	"github.com/mapacultural/eventos-sync/internal/model"
	engine "github.com/mapacultural/eventos-sync/internal/sync"
)

// EventRepo manages persistence for events and their join tables.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// ExternalIDIndex bulk-reads external_id → local id for every event row.
// The sync engine loads this snapshot once per run instead of issuing one
// existence query per record.
func (r *EventRepo) ExternalIDIndex(ctx context.Context) (map[int64]int64, error) {
	const q = `SELECT external_id, id FROM eventos`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[int64]int64)
	for rows.Next() {
		var externalID, id int64
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, err
		}
		index[externalID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return index, nil
}

// RunInTx opens a transaction, passes it to fn wrapped as an engine.EventTx
// and commits. When fn returns an error the transaction is rolled back and
// the error propagates, leaving every row of the batch unwritten.
func (r *EventRepo) RunInTx(ctx context.Context, fn func(tx engine.EventTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&eventTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// eventTx implements engine.EventTx on top of one *sql.Tx.
type eventTx struct {
	tx *sql.Tx
}

func (t *eventTx) InsertEvent(ctx context.Context, e *model.Event) (int64, error) {
	const q = `INSERT INTO eventos
		(external_id, nome, descricao, local, local_nome, municipio, cep,
		 latitude, longitude, telefone, email, site, acessibilidade,
		 classificacao_etaria, tags, data_inicio, data_fim, hora_inicio, hora_fim,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`
	res, err := t.tx.ExecContext(ctx, q,
		e.ExternalID, e.Nome, e.Descricao, e.Local, e.LocalNome, e.Municipio, e.CEP,
		e.Latitude, e.Longitude, e.Telefone, e.Email, e.Site, e.Acessibilidade,
		e.ClassificacaoEtaria, e.Tags, e.DataInicio, e.DataFim, e.HoraInicio, e.HoraFim,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

func (t *eventTx) UpdateEvent(ctx context.Context, id int64, e *model.Event) error {
	// Full-column update: every matched record is rewritten whether or not
	// anything changed. No dirty-checking.
	const q = `UPDATE eventos SET
		nome = ?, descricao = ?, local = ?, local_nome = ?, municipio = ?, cep = ?,
		latitude = ?, longitude = ?, telefone = ?, email = ?, site = ?,
		acessibilidade = ?, classificacao_etaria = ?, tags = ?,
		data_inicio = ?, data_fim = ?, hora_inicio = ?, hora_fim = ?,
		updated_at = NOW()
		WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		e.Nome, e.Descricao, e.Local, e.LocalNome, e.Municipio, e.CEP,
		e.Latitude, e.Longitude, e.Telefone, e.Email, e.Site,
		e.Acessibilidade, e.ClassificacaoEtaria, e.Tags,
		e.DataInicio, e.DataFim, e.HoraInicio, e.HoraFim,
		id,
	)
	return err
}

func (t *eventTx) ReplaceLanguages(ctx context.Context, eventID int64, languageIDs []int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM eventos_linguagens WHERE evento_id = ?`, eventID); err != nil {
		return err
	}
	const q = `INSERT IGNORE INTO eventos_linguagens (evento_id, linguagem_id) VALUES (?, ?)`
	for _, id := range languageIDs {
		if _, err := t.tx.ExecContext(ctx, q, eventID, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *eventTx) ReplaceSeals(ctx context.Context, eventID int64, sealIDs []int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM eventos_selos WHERE evento_id = ?`, eventID); err != nil {
		return err
	}
	const q = `INSERT IGNORE INTO eventos_selos (evento_id, selo_id) VALUES (?, ?)`
	for _, id := range sealIDs {
		if _, err := t.tx.ExecContext(ctx, q, eventID, id); err != nil {
			return err
		}
	}
	return nil
}
