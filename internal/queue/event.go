// Package queue defines message payloads exchanged over the message broker.
package queue

// SyncCompletedEvent is published when a sync run reaches a terminal state,
// whether it completed or failed. It carries the final counters so
// downstream consumers can log or alert without querying the database.
type SyncCompletedEvent struct {
	RunID              int64  `json:"run_id"`
	Status             string `json:"status"`
	TotalEventos       int    `json:"total_eventos"`
	EventosNovos       int    `json:"eventos_novos"`
	EventosAtualizados int    `json:"eventos_atualizados"`
	EventosErro        int    `json:"eventos_erro"`
	Mensagem           string `json:"mensagem,omitempty"`
	FinishedAt         string `json:"finished_at"`
}
