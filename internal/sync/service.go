package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/metrics"
	"github.com/mapacultural/eventos-sync/internal/model"
	"github.com/mapacultural/eventos-sync/internal/queue"
)

// ErrSyncInProgress is returned by Run when the most recent ledger row is
// still em_progresso. The check is advisory: it reads the latest row and
// acts on it without any lock, so two runs started at nearly the same moment
// can both pass it. That gap is inherited behavior, not a guarantee.
var ErrSyncInProgress = errors.New("sync already in progress")

// Stats are the final counters of one run. Erros stays zero on a successful
// run because a persistence failure aborts the run instead of being counted;
// on failure the counters reflect partial progress.
type Stats struct {
	Total       int `json:"total"`
	Novos       int `json:"novos"`
	Atualizados int `json:"atualizados"`
	Erros       int `json:"erros"`
}

// SealStats are the counters of a seal catalog sync.
type SealStats struct {
	Novos       int `json:"novos"`
	Atualizados int `json:"atualizados"`
	Erros       int `json:"erros"`
}

// Fetcher is the remote API surface the engine consumes.
type Fetcher interface {
	FetchAll(ctx context.Context, onPage mapacultural.ProgressFunc) ([]mapacultural.Event, error)
	Seals(ctx context.Context) ([]mapacultural.Seal, error)
}

// SnapshotStore bulk-reads the reconciliation snapshot of existing events.
type SnapshotStore interface {
	ExternalIDIndex(ctx context.Context) (map[int64]int64, error)
}

// Ledger persists the run lifecycle.
type Ledger interface {
	// Create inserts a new run row in the iniciado state and returns its id.
	Create(ctx context.Context) (int64, error)
	// MarkRunning moves the run to em_progresso.
	MarkRunning(ctx context.Context, id int64) error
	// Finalize moves the run to a terminal state with its counters.
	Finalize(ctx context.Context, id int64, status string, stats Stats, mensagem *string) error
	// Latest returns the most recently started run, or nil when none exists.
	Latest(ctx context.Context) (*model.SyncLog, error)
}

// Invalidator removes cached derived data after a successful run.
// *cache.Cache satisfies it.
type Invalidator interface {
	DeletePattern(ctx context.Context, pattern string)
}

// PublishFunc sends a run-completion event to the broker. Publishing is best
// effort; failures are logged by the publisher and ignored here.
type PublishFunc func(ctx context.Context, event queue.SyncCompletedEvent) error

// Cache namespaces holding data derived from the event tables. They are
// dropped after every successful run so the next read recomputes.
var invalidatedPatterns = []string{"eventos:*", "stats:*", "linguagens:*"}

// Service orchestrates one synchronization run: ledger open, full fetch,
// normalization, planning against the snapshot, batched writes, ledger
// close and cache invalidation. A Service is single-threaded; its resolver
// caches and counters are scoped to one run at a time.
type Service struct {
	api     Fetcher
	events  SnapshotStore
	writer  *Writer
	dims    *Resolver
	ledger  Ledger
	cache   Invalidator
	publish PublishFunc
}

// NewService wires the engine. publish may be nil when no broker is
// configured.
func NewService(api Fetcher, events SnapshotStore, writer *Writer, dims *Resolver, ledger Ledger, cache Invalidator, publish PublishFunc) *Service {
	return &Service{
		api:     api,
		events:  events,
		writer:  writer,
		dims:    dims,
		ledger:  ledger,
		cache:   cache,
		publish: publish,
	}
}

// Run executes one full synchronization and returns its final counters.
// It refuses to start while the latest ledger row is em_progresso. Any
// structural failure (database, transaction) finalizes the ledger as erro
// with the originating message and is returned to the caller; a degraded
// fetch is not a failure.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	last, err := s.ledger.Latest(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read last sync log: %w", err)
	}
	if last != nil && last.Status == model.StatusEmProgresso {
		return Stats{}, ErrSyncInProgress
	}

	runID, err := s.ledger.Create(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("create sync log: %w", err)
	}

	started := time.Now()
	var stats Stats
	if err := s.run(ctx, runID, &stats); err != nil {
		msg := err.Error()
		if ferr := s.ledger.Finalize(ctx, runID, model.StatusErro, stats, &msg); ferr != nil {
			log.Printf("sync: finalize run %d as erro: %v", runID, ferr)
		}
		s.emit(ctx, runID, model.StatusErro, stats, msg)
		metrics.SyncRuns.WithLabelValues(model.StatusErro).Inc()
		return stats, err
	}

	if err := s.ledger.Finalize(ctx, runID, model.StatusConcluido, stats, nil); err != nil {
		return stats, fmt.Errorf("finalize sync log: %w", err)
	}
	for _, pattern := range invalidatedPatterns {
		s.cache.DeletePattern(ctx, pattern)
	}
	s.emit(ctx, runID, model.StatusConcluido, stats, "")

	metrics.SyncRuns.WithLabelValues(model.StatusConcluido).Inc()
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	log.Printf("sync: run %d finished in %s | total=%d novos=%d atualizados=%d",
		runID, time.Since(started).Round(time.Millisecond), stats.Total, stats.Novos, stats.Atualizados)
	return stats, nil
}

func (s *Service) run(ctx context.Context, runID int64, stats *Stats) error {
	if err := s.ledger.MarkRunning(ctx, runID); err != nil {
		return fmt.Errorf("mark run as em_progresso: %w", err)
	}

	raw, err := s.api.FetchAll(ctx, func(p mapacultural.Progress) {
		log.Printf("sync: page %d: %d events | total: %d", p.Page, p.PageCount, p.Total)
		metrics.PagesFetched.Inc()
	})
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	stats.Total = len(raw)

	records := make([]Record, 0, len(raw))
	for _, ev := range raw {
		rec, ok := Normalize(ev)
		if !ok {
			// No usable name: skipped, counted as neither new nor updated.
			continue
		}
		records = append(records, rec)
	}

	snapshot, err := s.events.ExternalIDIndex(ctx)
	if err != nil {
		return fmt.Errorf("load event snapshot: %w", err)
	}
	if err := s.dims.Load(ctx); err != nil {
		return err
	}

	toInsert, toUpdate := Plan(records, snapshot)

	n, err := s.writer.ApplyInserts(ctx, toInsert)
	stats.Novos = n
	metrics.EventsWritten.WithLabelValues("novo").Add(float64(n))
	if err != nil {
		return err
	}

	n, err = s.writer.ApplyUpdates(ctx, toUpdate)
	stats.Atualizados = n
	metrics.EventsWritten.WithLabelValues("atualizado").Add(float64(n))
	if err != nil {
		return err
	}
	return nil
}

// SyncSeals refreshes the seal catalog from the remote API. Each seal is
// resolved through the dimension rules (by external id, then name, else
// insert); individual failures are counted and skipped rather than aborting
// the whole pass.
func (s *Service) SyncSeals(ctx context.Context) (SealStats, error) {
	seals, err := s.api.Seals(ctx)
	if err != nil {
		return SealStats{}, fmt.Errorf("fetch seals: %w", err)
	}
	if err := s.dims.Load(ctx); err != nil {
		return SealStats{}, err
	}

	var st SealStats
	for _, raw := range seals {
		_, outcome, err := s.dims.ResolveSeal(ctx, raw)
		if err != nil {
			st.Erros++
			log.Printf("sync: seal %q: %v", raw.Name, err)
			continue
		}
		switch outcome {
		case SealCreated:
			st.Novos++
		case SealUpdated:
			st.Atualizados++
		}
	}
	s.cache.DeletePattern(ctx, "selos:*")
	return st, nil
}

// emit publishes the run-completion event when a publisher is configured.
func (s *Service) emit(ctx context.Context, runID int64, status string, stats Stats, mensagem string) {
	if s.publish == nil {
		return
	}
	_ = s.publish(ctx, queue.SyncCompletedEvent{
		RunID:              runID,
		Status:             status,
		TotalEventos:       stats.Total,
		EventosNovos:       stats.Novos,
		EventosAtualizados: stats.Atualizados,
		EventosErro:        stats.Erros,
		Mensagem:           mensagem,
		FinishedAt:         time.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}
