package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return v.String(), nil
}

// SequenceGenerator returns caller supplied IDs in order. Intended for tests and seeds.
type SequenceGenerator struct {
	ids  []string
	next int
}

func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: append([]string(nil), ids...)}
}

func (g *SequenceGenerator) NewID() (string, error) {
	if g.next >= len(g.ids) {
		return "", fmt.Errorf("sequence generator exhausted after %d ids", len(g.ids))
	}
	out := g.ids[g.next]
	g.next++
	return out, nil
}
