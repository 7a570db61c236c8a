package model

// Sync run statuses as persisted in sync_logs.status. A run starts as
// StatusIniciado, moves to StatusEmProgresso once fetching begins and ends
// in one of the two terminal states. Terminal rows never transition again;
// every new run inserts a fresh row.
const (
	StatusIniciado    = "iniciado"
	StatusEmProgresso = "em_progresso"
	StatusConcluido   = "concluido"
	StatusErro        = "erro"
)

// SyncLog is one row of the sync_logs ledger. The most recently started row
// is the "current" run; a current row still in StatusEmProgresso is treated
// as evidence that another sync is active.
type SyncLog struct {
	ID                 int64   `json:"id"`
	Status             string  `json:"status"`
	TotalEventos       int     `json:"total_eventos"`
	EventosNovos       int     `json:"eventos_novos"`
	EventosAtualizados int     `json:"eventos_atualizados"`
	EventosErro        int     `json:"eventos_erro"`
	Mensagem           *string `json:"mensagem,omitempty"`
	StartedAt          string  `json:"started_at"`
	FinishedAt         *string `json:"finished_at,omitempty"`
}
