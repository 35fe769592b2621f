package uuid

import gonanoid "github.com/matoous/go-nanoid"

// Generator produce opaque unique identifiers. The client uses it for
// request trace ids, the dev server for entity ids
type Generator interface {
	Generate() (string, error)
}

// NanoIDGenerator Generator backed by NanoID
type NanoIDGenerator struct {
	Length int
}

var _ Generator = &NanoIDGenerator{}

// NewNanoIDGenerator create a generator emitting ids of length characters
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length < 1 {
		panic("id length must be positive")
	}
	return &NanoIDGenerator{Length: length}
}

// Generate ...
func (ng *NanoIDGenerator) Generate() (string, error) {
	return gonanoid.Nanoid(ng.Length)
}
