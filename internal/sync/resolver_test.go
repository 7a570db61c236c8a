package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/model"
)

// fakeLanguageStore is an in-memory LanguageStore counting inserts.
type fakeLanguageStore struct {
	names   map[string]int64
	nextID  int64
	inserts int
	failOn  string
}

func newFakeLanguageStore(names map[string]int64) *fakeLanguageStore {
	if names == nil {
		names = map[string]int64{}
	}
	next := int64(1)
	for _, id := range names {
		if id >= next {
			next = id + 1
		}
	}
	return &fakeLanguageStore{names: names, nextID: next}
}

func (f *fakeLanguageStore) NamesIndex(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.names))
	for k, v := range f.names {
		out[k] = v
	}
	return out, nil
}

func (f *fakeLanguageStore) Insert(ctx context.Context, nome string) (int64, error) {
	if nome == f.failOn {
		return 0, errors.New("duplicate entry")
	}
	f.inserts++
	id := f.nextID
	f.nextID++
	f.names[nome] = id
	return id, nil
}

// fakeSealStore is an in-memory SealStore counting writes.
type fakeSealStore struct {
	rows    []model.Seal
	nextID  int64
	inserts int
	updates int
}

func newFakeSealStore(rows ...model.Seal) *fakeSealStore {
	next := int64(1)
	for _, r := range rows {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return &fakeSealStore{rows: rows, nextID: next}
}

func (f *fakeSealStore) All(ctx context.Context) ([]model.Seal, error) {
	return append([]model.Seal(nil), f.rows...), nil
}

func (f *fakeSealStore) Insert(ctx context.Context, s *model.Seal) (int64, error) {
	f.inserts++
	s.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, *s)
	return s.ID, nil
}

func (f *fakeSealStore) Update(ctx context.Context, s *model.Seal) error {
	f.updates++
	for i := range f.rows {
		if f.rows[i].ID == s.ID {
			f.rows[i] = *s
			return nil
		}
	}
	return errors.New("row not found")
}

func loadedResolver(t *testing.T, langs *fakeLanguageStore, seals *fakeSealStore) *Resolver {
	t.Helper()
	r := NewResolver(langs, seals)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return r
}

func TestResolveLanguageDedupsWithinRun(t *testing.T) {
	langs := newFakeLanguageStore(map[string]int64{"Teatro": 1})
	r := loadedResolver(t, langs, newFakeSealStore())
	ctx := context.Background()

	id, err := r.ResolveLanguage(ctx, "Teatro")
	if err != nil || id != 1 {
		t.Fatalf("existing language: id=%d err=%v", id, err)
	}

	first, err := r.ResolveLanguage(ctx, "Música")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.ResolveLanguage(ctx, "Música")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same name resolved to %d then %d", first, second)
	}
	if langs.inserts != 1 {
		t.Errorf("inserts = %d, want 1", langs.inserts)
	}
}

func TestResolveLanguageBlank(t *testing.T) {
	r := loadedResolver(t, newFakeLanguageStore(nil), newFakeSealStore())
	id, err := r.ResolveLanguage(context.Background(), "   ")
	if err != nil || id != 0 {
		t.Errorf("blank name: id=%d err=%v, want 0/nil", id, err)
	}
}

func TestResolverRequiresLoad(t *testing.T) {
	r := NewResolver(newFakeLanguageStore(nil), newFakeSealStore())
	if _, err := r.ResolveLanguage(context.Background(), "Teatro"); err == nil {
		t.Error("expected error before Load")
	}
	if _, _, err := r.ResolveSeal(context.Background(), mapacultural.Seal{Name: "x"}); err == nil {
		t.Error("expected error before Load")
	}
}

func extID(v int64) *int64 { return &v }

func TestResolveSealByExternalID(t *testing.T) {
	seals := newFakeSealStore(model.Seal{ID: 5, ExternalID: extID(32), Nome: "Selo Cultura", Descricao: ptr("desc")})
	r := loadedResolver(t, newFakeLanguageStore(nil), seals)

	id, outcome, err := r.ResolveSeal(context.Background(), mapacultural.Seal{ID: extID(32), Name: "Selo Cultura", ShortDescription: "desc"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 5 || outcome != SealUnchanged {
		t.Errorf("id=%d outcome=%v, want 5/unchanged", id, outcome)
	}
	if seals.updates != 0 {
		t.Errorf("updates = %d, want 0", seals.updates)
	}
}

func TestResolveSealRefreshesDriftedRow(t *testing.T) {
	seals := newFakeSealStore(model.Seal{ID: 5, ExternalID: extID(32), Nome: "Nome Antigo"})
	r := loadedResolver(t, newFakeLanguageStore(nil), seals)
	ctx := context.Background()

	id, outcome, err := r.ResolveSeal(ctx, mapacultural.Seal{ID: extID(32), Name: "Nome Novo"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 5 || outcome != SealUpdated {
		t.Errorf("id=%d outcome=%v, want 5/updated", id, outcome)
	}
	if seals.updates != 1 {
		t.Errorf("updates = %d, want 1", seals.updates)
	}

	// The name cache followed the rename: the new name now resolves without
	// an external id, the old one does not.
	id, outcome, err = r.ResolveSeal(ctx, mapacultural.Seal{Name: "Nome Novo"})
	if err != nil || id != 5 || outcome != SealUnchanged {
		t.Errorf("renamed lookup: id=%d outcome=%v err=%v", id, outcome, err)
	}
}

func TestResolveSealAttachesExternalID(t *testing.T) {
	seals := newFakeSealStore(model.Seal{ID: 7, Nome: "Selo Municipal"})
	r := loadedResolver(t, newFakeLanguageStore(nil), seals)
	ctx := context.Background()

	id, outcome, err := r.ResolveSeal(ctx, mapacultural.Seal{ID: extID(99), Name: "Selo Municipal"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 || outcome != SealUpdated {
		t.Errorf("id=%d outcome=%v, want 7/updated", id, outcome)
	}

	// It is now reachable by external id.
	id, outcome, err = r.ResolveSeal(ctx, mapacultural.Seal{ID: extID(99), Name: "Selo Municipal"})
	if err != nil || id != 7 || outcome != SealUnchanged {
		t.Errorf("by-ext lookup after attach: id=%d outcome=%v err=%v", id, outcome, err)
	}
	if seals.updates != 1 {
		t.Errorf("updates = %d, want 1", seals.updates)
	}
}

func TestResolveSealInsertsUnknown(t *testing.T) {
	seals := newFakeSealStore()
	r := loadedResolver(t, newFakeLanguageStore(nil), seals)
	ctx := context.Background()

	id, outcome, err := r.ResolveSeal(ctx, mapacultural.Seal{ID: extID(1), Name: "Selo Novo"})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != SealCreated || id == 0 {
		t.Errorf("id=%d outcome=%v, want created", id, outcome)
	}

	// Second sight within the run hits the cache.
	again, outcome, err := r.ResolveSeal(ctx, mapacultural.Seal{ID: extID(1), Name: "Selo Novo"})
	if err != nil || again != id || outcome != SealUnchanged {
		t.Errorf("second sight: id=%d outcome=%v err=%v", again, outcome, err)
	}
	if seals.inserts != 1 {
		t.Errorf("inserts = %d, want 1", seals.inserts)
	}
}

func TestResolveSealNamelessSentinel(t *testing.T) {
	seals := newFakeSealStore()
	r := loadedResolver(t, newFakeLanguageStore(nil), seals)

	_, outcome, err := r.ResolveSeal(context.Background(), mapacultural.Seal{})
	if err != nil || outcome != SealCreated {
		t.Fatalf("outcome=%v err=%v", outcome, err)
	}
	if seals.rows[0].Nome != SentinelSeloSemNome {
		t.Errorf("Nome = %q, want sentinel", seals.rows[0].Nome)
	}
}
