package loader

import (
	"sync"

	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// registry is the shared Token to owned-row map populated during pass 1.
// Inserts are lock-free and insert-once: materializing the same token
// twice is a loader bug, not an input problem.
type registry struct {
	m sync.Map // cil.Token -> any
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) insert(tok cil.Token, row any) error {
	if _, loaded := r.m.LoadOrStore(tok, row); loaded {
		return errors.Internal(errors.PhaseResolve, "token %s materialized twice", tok)
	}
	return nil
}

func (r *registry) lookup(tok cil.Token) (any, bool) {
	return r.m.Load(tok)
}

func lookupAs[T any](r *registry, tok cil.Token) (*T, bool) {
	v, ok := r.lookup(tok)
	if !ok {
		return nil, false
	}
	t, ok := v.(*T)
	return t, ok
}
