package model

// Language is one row of the linguagens dimension table. Names are unique
// and grow monotonically: a language is created the first time an event
// references an unseen name and is never merged or renamed afterwards.
type Language struct {
	ID   int64  // linguagens.id
	Nome string // linguagens.nome
}
