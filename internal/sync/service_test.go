package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/model"
	"github.com/mapacultural/eventos-sync/internal/queue"
)

// fakeFetcher pages through a fixed event set.
type fakeFetcher struct {
	events []mapacultural.Event
	seals  []mapacultural.Seal
	err    error
}

func (f *fakeFetcher) FetchAll(ctx context.Context, onPage mapacultural.ProgressFunc) ([]mapacultural.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if onPage != nil {
		onPage(mapacultural.Progress{Page: 1, PageCount: len(f.events), Total: len(f.events)})
	}
	return f.events, nil
}

func (f *fakeFetcher) Seals(ctx context.Context) ([]mapacultural.Seal, error) {
	return f.seals, f.err
}

// fakeLedger records the run lifecycle in memory.
type fakeLedger struct {
	nextID int64
	rows   []*model.SyncLog
}

func (l *fakeLedger) Create(ctx context.Context) (int64, error) {
	l.nextID++
	l.rows = append(l.rows, &model.SyncLog{ID: l.nextID, Status: model.StatusIniciado})
	return l.nextID, nil
}

func (l *fakeLedger) MarkRunning(ctx context.Context, id int64) error {
	l.find(id).Status = model.StatusEmProgresso
	return nil
}

func (l *fakeLedger) Finalize(ctx context.Context, id int64, status string, stats Stats, mensagem *string) error {
	row := l.find(id)
	row.Status = status
	row.TotalEventos = stats.Total
	row.EventosNovos = stats.Novos
	row.EventosAtualizados = stats.Atualizados
	row.EventosErro = stats.Erros
	row.Mensagem = mensagem
	return nil
}

func (l *fakeLedger) Latest(ctx context.Context) (*model.SyncLog, error) {
	if len(l.rows) == 0 {
		return nil, nil
	}
	return l.rows[len(l.rows)-1], nil
}

func (l *fakeLedger) find(id int64) *model.SyncLog {
	for _, r := range l.rows {
		if r.ID == id {
			return r
		}
	}
	panic("unknown run id")
}

// fakeInvalidator collects the patterns dropped from the cache.
type fakeInvalidator struct {
	patterns []string
}

func (f *fakeInvalidator) DeletePattern(ctx context.Context, pattern string) {
	f.patterns = append(f.patterns, pattern)
}

// snapshotFromStore adapts fakeStore to SnapshotStore.
type snapshotFromStore struct{ store *fakeStore }

func (s snapshotFromStore) ExternalIDIndex(ctx context.Context) (map[int64]int64, error) {
	out := map[int64]int64{}
	for id, e := range s.store.events {
		out[e.ExternalID] = id
	}
	return out, nil
}

type serviceFixture struct {
	svc    *Service
	store  *fakeStore
	ledger *fakeLedger
	cache  *fakeInvalidator
	events []queue.SyncCompletedEvent
}

func newServiceFixture(t *testing.T, api Fetcher) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store:  newFakeStore(),
		ledger: &fakeLedger{},
		cache:  &fakeInvalidator{},
	}
	dims := NewResolver(newFakeLanguageStore(nil), newFakeSealStore())
	writer := NewWriter(f.store, dims, 100)
	publish := func(ctx context.Context, ev queue.SyncCompletedEvent) error {
		f.events = append(f.events, ev)
		return nil
	}
	f.svc = NewService(api, snapshotFromStore{f.store}, writer, dims, f.ledger, f.cache, publish)
	return f
}

func remoteEvents(n int, firstExt int64) []mapacultural.Event {
	out := make([]mapacultural.Event, n)
	for i := range out {
		out[i] = mapacultural.Event{ID: firstExt + int64(i), Name: "Evento"}
	}
	return out
}

func TestRunFirstSyncInsertsEverything(t *testing.T) {
	api := &fakeFetcher{events: remoteEvents(240, 1)}
	f := newServiceFixture(t, api)

	stats, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 240 || stats.Novos != 240 || stats.Atualizados != 0 {
		t.Errorf("stats = %+v, want 240/240/0", stats)
	}
	if len(f.store.events) != 240 {
		t.Errorf("stored events = %d, want 240", len(f.store.events))
	}

	row, _ := f.ledger.Latest(context.Background())
	if row.Status != model.StatusConcluido {
		t.Errorf("final status = %q, want concluido", row.Status)
	}
	if row.TotalEventos != 240 || row.EventosNovos != 240 {
		t.Errorf("ledger counters = %+v", row)
	}

	want := []string{"eventos:*", "stats:*", "linguagens:*"}
	if len(f.cache.patterns) != len(want) {
		t.Fatalf("invalidated = %v, want %v", f.cache.patterns, want)
	}
	for i, p := range want {
		if f.cache.patterns[i] != p {
			t.Errorf("pattern[%d] = %q, want %q", i, f.cache.patterns[i], p)
		}
	}

	if len(f.events) != 1 || f.events[0].Status != model.StatusConcluido {
		t.Errorf("published events = %+v", f.events)
	}
}

func TestRunSecondSyncUpdatesOnly(t *testing.T) {
	api := &fakeFetcher{events: remoteEvents(50, 1)}
	f := newServiceFixture(t, api)
	ctx := context.Background()

	if _, err := f.svc.Run(ctx); err != nil {
		t.Fatal(err)
	}
	stats, err := f.svc.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Novos != 0 || stats.Atualizados != 50 {
		t.Errorf("second run stats = %+v, want 0 novos / 50 atualizados", stats)
	}
	if len(f.store.events) != 50 {
		t.Errorf("stored events = %d, want 50 (no duplicates)", len(f.store.events))
	}
}

func TestRunSkipsNamelessRecords(t *testing.T) {
	events := remoteEvents(3, 1)
	events[1].Name = "  "
	api := &fakeFetcher{events: events}
	f := newServiceFixture(t, api)

	stats, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Novos != 2 {
		t.Errorf("stats = %+v, want total=3 novos=2", stats)
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	api := &fakeFetcher{}
	f := newServiceFixture(t, api)
	f.ledger.rows = append(f.ledger.rows, &model.SyncLog{ID: 1, Status: model.StatusEmProgresso})

	_, err := f.svc.Run(context.Background())
	if !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("err = %v, want ErrSyncInProgress", err)
	}
	if len(f.ledger.rows) != 1 {
		t.Error("no new ledger row should be created")
	}
}

func TestRunFetchFailureFinalizesAsErro(t *testing.T) {
	api := &fakeFetcher{err: errors.New("remote down")}
	f := newServiceFixture(t, api)

	_, err := f.svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	row, _ := f.ledger.Latest(context.Background())
	if row.Status != model.StatusErro {
		t.Errorf("status = %q, want erro", row.Status)
	}
	if row.Mensagem == nil || !strings.Contains(*row.Mensagem, "remote down") {
		t.Errorf("mensagem = %v, want the originating message", row.Mensagem)
	}
	if len(f.cache.patterns) != 0 {
		t.Errorf("cache invalidated on failure: %v", f.cache.patterns)
	}
	if len(f.events) != 1 || f.events[0].Status != model.StatusErro {
		t.Errorf("published events = %+v", f.events)
	}
}

func TestRunWriteFailureFinalizesAsErro(t *testing.T) {
	api := &fakeFetcher{events: remoteEvents(10, 1)}
	f := newServiceFixture(t, api)
	f.store.failOnExt = 5

	_, err := f.svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	row, _ := f.ledger.Latest(context.Background())
	if row.Status != model.StatusErro {
		t.Errorf("status = %q, want erro", row.Status)
	}
}

func TestSyncSeals(t *testing.T) {
	api := &fakeFetcher{seals: []mapacultural.Seal{
		{ID: extID(1), Name: "Selo A"},
		{ID: extID(2), Name: "Selo B"},
	}}
	f := newServiceFixture(t, api)

	st, err := f.svc.SyncSeals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Novos != 2 || st.Atualizados != 0 || st.Erros != 0 {
		t.Errorf("stats = %+v, want 2 novos", st)
	}
	if len(f.cache.patterns) != 1 || f.cache.patterns[0] != "selos:*" {
		t.Errorf("invalidated = %v, want [selos:*]", f.cache.patterns)
	}

	// A second pass sees everything unchanged.
	st, err = f.svc.SyncSeals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Novos != 0 || st.Atualizados != 0 {
		t.Errorf("second pass stats = %+v, want all zero", st)
	}
}
