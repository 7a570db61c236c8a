// Package mapacultural implements the client for the Mapa Cultural API
// (mapacultural.secult.ce.gov.br). The API returns heterogeneous records:
// numeric fields may arrive as strings, booleans as strings or numbers, and
// most nested structures are optional. The types below keep the raw shape;
// normalization into the local schema happens in the sync package.
package mapacultural

import "encoding/json"

// Event is one raw record from /event/find.
type Event struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	ShortDescription    string          `json:"shortDescription"`
	LongDescription     string          `json:"longDescription"`
	Location            *Location       `json:"location"`
	EnMunicipio         string          `json:"En_Municipio"`
	EnEstado            string          `json:"En_Estado"`
	EnCEP               string          `json:"En_CEP"`
	Acessibilidade      json.RawMessage `json:"acessibilidade"`
	Site                string          `json:"site"`
	EmailPublico        string          `json:"emailPublico"`
	TelefonePublico     string          `json:"telefonePublico"`
	ClassificacaoEtaria string          `json:"classificacaoEtaria"`
	Terms               Terms           `json:"terms"`
	Occurrences         []Occurrence    `json:"occurrences"`
	Seals               []Seal          `json:"seals"`
}

// Location carries the event address. Latitude and longitude are kept raw
// because the API serializes them either as numbers or as quoted strings.
type Location struct {
	Address   string          `json:"address"`
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

// Terms groups the taxonomy terms attached to an event. Linguagem feeds the
// language dimension; Tag is flattened into the event row.
type Terms struct {
	Linguagem []string `json:"linguagem"`
	Tag       []string `json:"tag"`
}

// Occurrence is one scheduled occurrence of an event. Rule holds the
// recurrence data and Space the venue it happens at.
type Occurrence struct {
	Rule  *Rule  `json:"rule"`
	Space *Space `json:"space"`
}

// Rule is the recurrence rule of an occurrence. Dates use "2006-01-02" and
// times "15:04". Empty strings mean the field was absent.
type Rule struct {
	StartsOn string `json:"startsOn"`
	Until    string `json:"until"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// Space is the venue an occurrence is held at.
type Space struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Seal is a certification seal, either attached to an event or returned by
// /seal/find. ID is a pointer because seals referenced only by name carry
// no external id.
type Seal struct {
	ID               *int64 `json:"id"`
	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription"`
}
