package sync

import (
	"context"
	"fmt"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/model"
)

// DefaultBatchSize is the number of event rows written per transaction.
const DefaultBatchSize = 500

// EventTx is the per-transaction surface the writer drives. All four
// operations run inside one database transaction; ReplaceLanguages and
// ReplaceSeals rewrite the event's join rows wholesale (delete all, insert
// the given set) with duplicate pairs ignored rather than erroring.
type EventTx interface {
	InsertEvent(ctx context.Context, e *model.Event) (int64, error)
	UpdateEvent(ctx context.Context, id int64, e *model.Event) error
	ReplaceLanguages(ctx context.Context, eventID int64, languageIDs []int64) error
	ReplaceSeals(ctx context.Context, eventID int64, sealIDs []int64) error
}

// TxRunner opens a transaction, hands it to fn and commits, rolling back
// when fn returns an error.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx EventTx) error) error
}

// Writer applies planned inserts and updates in fixed-size transactional
// batches. A failure on any row rolls the whole batch back and propagates,
// aborting the run; batches committed before the failing one stay committed,
// so partial overall progress is possible and expected.
type Writer struct {
	store TxRunner
	dims  *Resolver
	size  int
}

// NewWriter builds a Writer. batchSize values below 1 fall back to
// DefaultBatchSize.
func NewWriter(store TxRunner, dims *Resolver, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Writer{store: store, dims: dims, size: batchSize}
}

// ApplyInserts writes new event rows and their relationships, returning the
// number of rows applied.
func (w *Writer) ApplyInserts(ctx context.Context, records []Record) (int, error) {
	return w.apply(ctx, records, true)
}

// ApplyUpdates rewrites matched event rows in full and replaces their
// relationships, returning the number of rows applied.
func (w *Writer) ApplyUpdates(ctx context.Context, records []Record) (int, error) {
	return w.apply(ctx, records, false)
}

func (w *Writer) apply(ctx context.Context, records []Record, insert bool) (int, error) {
	applied := 0
	for start := 0; start < len(records); start += w.size {
		end := start + w.size
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		err := w.store.RunInTx(ctx, func(tx EventTx) error {
			for i := range batch {
				if err := w.writeOne(ctx, tx, &batch[i], insert); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied += len(batch)
	}
	return applied, nil
}

// writeOne persists a single record inside the batch transaction: the event
// row itself, then a full replacement of both join tables using ids from the
// dimension resolver.
func (w *Writer) writeOne(ctx context.Context, tx EventTx, rec *Record, insert bool) error {
	var id int64
	if insert {
		newID, err := tx.InsertEvent(ctx, &rec.Evento)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", rec.Evento.ExternalID, err)
		}
		id = newID
	} else {
		id = rec.LocalID
		if err := tx.UpdateEvent(ctx, id, &rec.Evento); err != nil {
			return fmt.Errorf("update event %d: %w", rec.Evento.ExternalID, err)
		}
	}

	languageIDs, err := w.resolveLanguages(ctx, rec.Linguagens)
	if err != nil {
		return err
	}
	if err := tx.ReplaceLanguages(ctx, id, languageIDs); err != nil {
		return fmt.Errorf("replace languages of event %d: %w", rec.Evento.ExternalID, err)
	}

	sealIDs, err := w.resolveSeals(ctx, rec.Selos)
	if err != nil {
		return err
	}
	if err := tx.ReplaceSeals(ctx, id, sealIDs); err != nil {
		return fmt.Errorf("replace seals of event %d: %w", rec.Evento.ExternalID, err)
	}
	return nil
}

func (w *Writer) resolveLanguages(ctx context.Context, names []string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool, len(names))
	for _, nome := range names {
		id, err := w.dims.ResolveLanguage(ctx, nome)
		if err != nil {
			return nil, err
		}
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func (w *Writer) resolveSeals(ctx context.Context, seals []mapacultural.Seal) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool, len(seals))
	for _, s := range seals {
		id, _, err := w.dims.ResolveSeal(ctx, s)
		if err != nil {
			return nil, err
		}
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
