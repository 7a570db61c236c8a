package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mapacultural/eventos-sync/internal/model"
	engine "github.com/mapacultural/eventos-sync/internal/sync"
)

// SyncLogRepo persists the run ledger. It implements engine.Ledger.
type SyncLogRepo struct {
	db *sql.DB
}

// NewSyncLogRepo constructs a SyncLogRepo with the given DB handle.
func NewSyncLogRepo(db *sql.DB) *SyncLogRepo {
	return &SyncLogRepo{db: db}
}

// Create inserts a new ledger row in the iniciado state and returns its id.
// Every run gets a fresh row; terminal rows are never reused.
func (r *SyncLogRepo) Create(ctx context.Context) (int64, error) {
	const q = `INSERT INTO sync_logs (status, started_at) VALUES (?, NOW())`
	res, err := r.db.ExecContext(ctx, q, model.StatusIniciado)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkRunning moves the run to em_progresso once fetching begins.
func (r *SyncLogRepo) MarkRunning(ctx context.Context, id int64) error {
	const q = `UPDATE sync_logs SET status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, model.StatusEmProgresso, id)
	return err
}

// Finalize records the terminal status, the counters and the finish time.
// mensagem is nil for successful runs.
func (r *SyncLogRepo) Finalize(ctx context.Context, id int64, status string, stats engine.Stats, mensagem *string) error {
	const q = `UPDATE sync_logs SET
		status = ?, total_eventos = ?, eventos_novos = ?, eventos_atualizados = ?,
		eventos_erro = ?, mensagem = ?, finished_at = NOW()
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		status, stats.Total, stats.Novos, stats.Atualizados, stats.Erros, mensagem, id)
	return err
}

// Latest returns the most recently started run, or nil when the ledger is
// empty. Callers use it both for the advisory "already running" check and
// for status reporting.
func (r *SyncLogRepo) Latest(ctx context.Context) (*model.SyncLog, error) {
	const q = `SELECT id, status, total_eventos, eventos_novos, eventos_atualizados,
		eventos_erro, mensagem,
		DATE_FORMAT(started_at, '%Y-%m-%d %T'),
		DATE_FORMAT(finished_at, '%Y-%m-%d %T')
		FROM sync_logs ORDER BY started_at DESC, id DESC LIMIT 1`

	var l model.SyncLog
	var total, novos, atualizados, erros sql.NullInt64
	var mensagem, finishedAt sql.NullString
	err := r.db.QueryRowContext(ctx, q).Scan(
		&l.ID, &l.Status, &total, &novos, &atualizados, &erros,
		&mensagem, &l.StartedAt, &finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	l.TotalEventos = int(total.Int64)
	l.EventosNovos = int(novos.Int64)
	l.EventosAtualizados = int(atualizados.Int64)
	l.EventosErro = int(erros.Int64)
	if mensagem.Valid {
		l.Mensagem = &mensagem.String
	}
	if finishedAt.Valid {
		l.FinishedAt = &finishedAt.String
	}
	return &l, nil
}
