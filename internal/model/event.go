package model

// Event is one row of the eventos table, the local mirror of a remote
// Mapa Cultural event. ExternalID is the remote identifier and the sole
// reconciliation key: the sync never creates two rows for the same
// external id and never deletes rows that vanished upstream.
//
// Nullable columns use pointer fields; a nil pointer is written as SQL NULL.
// Date and time columns are carried as DB-format strings ("2006-01-02" and
// "15:04") the way they arrive from the remote recurrence rules.
type Event struct {
	ID                  int64    // eventos.id
	ExternalID          int64    // eventos.external_id
	Nome                string   // eventos.nome (never empty; "Sem nome" records are not persisted)
	Descricao           *string  // eventos.descricao
	Local               *string  // eventos.local (address text)
	LocalNome           *string  // eventos.local_nome (venue name from the first occurrence space)
	Municipio           string   // eventos.municipio ("Não informado" when the source is blank)
	CEP                 *string  // eventos.cep
	Latitude            *float64 // eventos.latitude
	Longitude           *float64 // eventos.longitude
	Telefone            *string  // eventos.telefone
	Email               *string  // eventos.email
	Site                *string  // eventos.site
	Acessibilidade      bool     // eventos.acessibilidade
	ClassificacaoEtaria *string  // eventos.classificacao_etaria
	Tags                *string  // eventos.tags (comma-joined term list)
	DataInicio          *string  // eventos.data_inicio
	DataFim             *string  // eventos.data_fim
	HoraInicio          *string  // eventos.hora_inicio
	HoraFim             *string  // eventos.hora_fim
}
