package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/model"
)

// SentinelSeloSemNome replaces a missing seal name.
const SentinelSeloSemNome = "Selo sem nome"

// LanguageStore is the persistence surface the resolver needs for the
// linguagens dimension.
type LanguageStore interface {
	// NamesIndex bulk-reads the whole table as name → id.
	NamesIndex(ctx context.Context) (map[string]int64, error)
	Insert(ctx context.Context, nome string) (int64, error)
}

// SealStore is the persistence surface the resolver needs for the selos
// dimension.
type SealStore interface {
	// All bulk-reads the whole table.
	All(ctx context.Context) ([]model.Seal, error)
	// Insert stores a new seal and returns its generated id.
	Insert(ctx context.Context, s *model.Seal) (int64, error)
	// Update rewrites external_id, nome and descricao of the row s.ID.
	Update(ctx context.Context, s *model.Seal) error
}

// SealOutcome reports what resolving a seal did to the dimension table.
type SealOutcome int

const (
	SealUnchanged SealOutcome = iota
	SealCreated
	SealUpdated
)

type sealRef struct {
	id        int64
	nome      string
	descricao string
}

// Resolver maintains the per-run name → id caches for both dimension tables.
// The caches are bulk-loaded once per run and mutated in place as new rows
// are created, so repeated references to the same new name within one run
// reuse one id instead of creating duplicates. That in-memory dedup is a
// correctness requirement: dimension uniqueness is enforced here, in the
// application, not by the database.
//
// Dimension inserts run on the main connection, outside the batch
// transactions. A rolled-back batch therefore never leaves the caches
// pointing at rows that do not exist; at worst an aborted run leaves extra
// dimension rows behind, which the next run reuses.
//
// A Resolver is scoped to a single run and is not safe for concurrent use.
type Resolver struct {
	langs LanguageStore
	seals SealStore

	languages   map[string]int64
	sealsByExt  map[int64]*sealRef
	sealsByName map[string]int64
	loaded      bool
}

// NewResolver builds a Resolver over the two dimension stores. Call Load
// before resolving.
func NewResolver(langs LanguageStore, seals SealStore) *Resolver {
	return &Resolver{langs: langs, seals: seals}
}

// Load bulk-reads both dimension tables into the caches. It replaces any
// previously loaded state, so a long-lived Resolver can be reloaded at the
// start of each run.
func (r *Resolver) Load(ctx context.Context) error {
	languages, err := r.langs.NamesIndex(ctx)
	if err != nil {
		return fmt.Errorf("load languages: %w", err)
	}

	seals, err := r.seals.All(ctx)
	if err != nil {
		return fmt.Errorf("load seals: %w", err)
	}

	r.languages = languages
	r.sealsByExt = make(map[int64]*sealRef, len(seals))
	r.sealsByName = make(map[string]int64, len(seals))
	for _, s := range seals {
		ref := &sealRef{id: s.ID, nome: s.Nome}
		if s.Descricao != nil {
			ref.descricao = *s.Descricao
		}
		if s.ExternalID != nil {
			r.sealsByExt[*s.ExternalID] = ref
		}
		r.sealsByName[s.Nome] = s.ID
	}
	r.loaded = true
	return nil
}

// ResolveLanguage returns the id for a language name, inserting the row on
// first sight. Blank names resolve to 0 and should be skipped by the caller.
func (r *Resolver) ResolveLanguage(ctx context.Context, nome string) (int64, error) {
	if !r.loaded {
		return 0, fmt.Errorf("resolver: Load was not called")
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return 0, nil
	}
	if id, ok := r.languages[nome]; ok {
		return id, nil
	}
	id, err := r.langs.Insert(ctx, nome)
	if err != nil {
		return 0, fmt.Errorf("insert language %q: %w", nome, err)
	}
	r.languages[nome] = id
	return id, nil
}

// ResolveSeal returns the local id for a raw seal. Resolution order is
// strict: match by external id first (with an opportunistic name/description
// refresh when the stored values drifted), then by name, else insert a new
// row. A name-matched seal that now carries an external id the stored row
// lacks is updated in place rather than duplicated.
func (r *Resolver) ResolveSeal(ctx context.Context, raw mapacultural.Seal) (int64, SealOutcome, error) {
	if !r.loaded {
		return 0, SealUnchanged, fmt.Errorf("resolver: Load was not called")
	}

	nome := strings.TrimSpace(raw.Name)
	if nome == "" {
		nome = SentinelSeloSemNome
	}
	descricao := raw.ShortDescription

	if raw.ID != nil {
		if ref, ok := r.sealsByExt[*raw.ID]; ok {
			if ref.nome == nome && ref.descricao == descricao {
				return ref.id, SealUnchanged, nil
			}
			s := model.Seal{ID: ref.id, ExternalID: raw.ID, Nome: nome, Descricao: nonEmpty(descricao)}
			if err := r.seals.Update(ctx, &s); err != nil {
				return 0, SealUnchanged, fmt.Errorf("update seal %d: %w", ref.id, err)
			}
			delete(r.sealsByName, ref.nome)
			ref.nome = nome
			ref.descricao = descricao
			r.sealsByName[nome] = ref.id
			return ref.id, SealUpdated, nil
		}
	}

	if id, ok := r.sealsByName[nome]; ok {
		if raw.ID == nil {
			return id, SealUnchanged, nil
		}
		// The stored row predates the external id: attach it now.
		s := model.Seal{ID: id, ExternalID: raw.ID, Nome: nome, Descricao: nonEmpty(descricao)}
		if err := r.seals.Update(ctx, &s); err != nil {
			return 0, SealUnchanged, fmt.Errorf("update seal %d: %w", id, err)
		}
		r.sealsByExt[*raw.ID] = &sealRef{id: id, nome: nome, descricao: descricao}
		return id, SealUpdated, nil
	}

	s := model.Seal{ExternalID: raw.ID, Nome: nome, Descricao: nonEmpty(descricao)}
	id, err := r.seals.Insert(ctx, &s)
	if err != nil {
		return 0, SealUnchanged, fmt.Errorf("insert seal %q: %w", nome, err)
	}
	if raw.ID != nil {
		r.sealsByExt[*raw.ID] = &sealRef{id: id, nome: nome, descricao: descricao}
	}
	r.sealsByName[nome] = id
	return id, SealCreated, nil
}
