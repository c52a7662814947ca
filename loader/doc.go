// Package loader resolves a parsed metadata image into an owned object
// graph.
//
// # Two-pass resolution
//
// Pass 1 materializes every table row: heap offsets are replaced by
// copied-out strings, blobs and guids, and list columns are sliced into
// child collections. Tables run in parallel within dependency stages, so
// a table that slices into another (TypeDef into Field and MethodDef) only
// starts once its targets are fully materialized.
//
// Pass 2 resolves coded-index fields through a Resolver backed by the
// token registry populated in pass 1, then applies owner links (a generic
// parameter registers itself with its owning type or method, a nested
// class with its enclosing class). A required reference that misses is an
// unresolved-reference error carrying the source token; an optional
// reference with the null sentinel becomes the explicit None Ref.
//
// The loaded Assembly is immutable and safe to share across goroutines.
// Images that use the Ptr indirection tables are resolved by direct row
// order; the raw rows stay available through Assembly.Raw.
package loader
