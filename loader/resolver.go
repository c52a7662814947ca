package loader

import (
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// Resolver resolves coded-index references against the token registry.
// Valid only once pass 1 has fully populated the registry.
type Resolver struct {
	reg *registry
}

// Resolve turns a coded index into a Ref. The null sentinel resolves to
// None; a live reference whose target is missing is an
// unresolved-reference error.
func (r *Resolver) Resolve(ci cil.CodedIndex) (Ref, error) {
	if ci.IsNil() {
		return Ref{}, nil
	}
	tok := ci.Token()
	v, ok := r.reg.lookup(tok)
	if !ok {
		return Ref{}, errors.Unresolved(tok.Value(), "coded index target does not exist")
	}
	return Ref{Token: tok, Value: v}, nil
}

// required resolves a reference that must not be null. source is the
// token of the row holding the field.
func (r *Resolver) required(ci cil.CodedIndex, source cil.Token, field string) (Ref, error) {
	if ci.IsNil() {
		return Ref{}, errors.Unresolved(source.Value(), field+" must not be null")
	}
	ref, err := r.Resolve(ci)
	if err != nil {
		return Ref{}, errors.Unresolved(source.Value(), field+": "+err.Error())
	}
	return ref, nil
}
