// Package sync implements the incremental synchronization engine: it pulls
// the full remote event collection, normalizes the nested records into the
// flat local schema, reconciles them against the existing rows and applies
// the changes in batched transactions while keeping the language and seal
// dimension tables consistent.
package sync

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/model"
)

// Sentinels written in place of unusable source values. Records whose name
// normalizes to SentinelSemNome are invalid and never persisted.
const (
	SentinelSemNome      = "Sem nome"
	SentinelNaoInformado = "Não informado"
)

// Record is one normalized remote event together with the dimension
// references extracted from it. LocalID is zero until the planner matches
// the record against an existing row.
type Record struct {
	Evento     model.Event
	Linguagens []string
	Selos      []mapacultural.Seal
	LocalID    int64
}

// Normalize maps one raw remote record into the local row shape. It is a
// pure function: defaults, truncation and field fallbacks only, no I/O.
// ok is false when the record had no usable name; such records are skipped
// entirely and count as neither new nor updated.
func Normalize(raw mapacultural.Event) (Record, bool) {
	nome := strings.TrimSpace(raw.Name)
	if nome == "" {
		nome = SentinelSemNome
	}
	nome = truncate(nome, 255)

	municipio := strings.TrimSpace(raw.EnMunicipio)
	if municipio == "" {
		municipio = SentinelNaoInformado
	}
	municipio = truncate(municipio, 100)

	e := model.Event{
		ExternalID:          raw.ID,
		Nome:                nome,
		Municipio:           municipio,
		CEP:                 strPtr(raw.EnCEP, 20),
		Telefone:            strPtr(raw.TelefonePublico, 50),
		Email:               strPtr(raw.EmailPublico, 255),
		Site:                strPtr(raw.Site, 255),
		Acessibilidade:      truthy(raw.Acessibilidade),
		ClassificacaoEtaria: strPtr(raw.ClassificacaoEtaria, 50),
	}

	switch {
	case raw.ShortDescription != "":
		e.Descricao = ptr(raw.ShortDescription)
	case raw.LongDescription != "":
		e.Descricao = ptr(raw.LongDescription)
	}

	if raw.Location != nil {
		e.Local = strPtr(raw.Location.Address, 255)
		e.Latitude = parseFloat(raw.Location.Latitude)
		e.Longitude = parseFloat(raw.Location.Longitude)
	}

	// Dates come from the first occurrence's recurrence rule. An event with
	// no occurrence data keeps all-null dates; that is a valid state, not an
	// error. A rule without an explicit end falls back to the start date.
	if len(raw.Occurrences) > 0 {
		first := raw.Occurrences[0]
		if r := first.Rule; r != nil {
			e.DataInicio = nonEmpty(r.StartsOn)
			if r.Until != "" {
				e.DataFim = ptr(r.Until)
			} else {
				e.DataFim = nonEmpty(r.StartsOn)
			}
			e.HoraInicio = nonEmpty(r.StartsAt)
			e.HoraFim = nonEmpty(r.EndsAt)
		}
		if s := first.Space; s != nil && s.Name != "" {
			e.LocalNome = strPtr(s.Name, 255)
		}
	}

	if len(raw.Terms.Tag) > 0 {
		e.Tags = ptr(strings.Join(raw.Terms.Tag, ", "))
	}

	rec := Record{
		Evento:     e,
		Linguagens: raw.Terms.Linguagem,
		Selos:      raw.Seals,
	}
	return rec, nome != SentinelSemNome
}

// truncate shortens s to at most n characters, counting runes so multi-byte
// text is never cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ptr(s string) *string {
	return &s
}

// nonEmpty returns a pointer to s, or nil when s is empty.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// strPtr converts an optional source field: empty becomes NULL, anything
// else is truncated to the column width.
func strPtr(s string, max int) *string {
	if s == "" {
		return nil
	}
	t := truncate(s, max)
	return &t
}

// truthy maps the heterogeneous acessibilidade field to a boolean. The API
// serializes it as a bool, a number or a string; any non-empty, non-zero
// value counts as accessible.
func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`, `"0"`, "[]":
		return false
	}
	return true
}

// parseFloat reads a coordinate that may arrive as a bare number or a quoted
// string. Empty and zero-valued sources yield nil.
func parseFloat(raw json.RawMessage) *float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	switch s {
	case "", "null", "0":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
