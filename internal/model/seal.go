package model

// Seal is one row of the selos dimension table. ExternalID is nullable:
// seals referenced only by name on an event have no remote id until the
// seal catalog sync supplies one, at which point the existing row is
// updated in place rather than duplicated.
type Seal struct {
	ID         int64   // selos.id
	ExternalID *int64  // selos.external_id
	Nome       string  // selos.nome
	Descricao  *string // selos.descricao
}
