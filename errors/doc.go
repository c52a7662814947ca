// Package errors provides structured error types for the cilmeta library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, offending
// metadata token, byte offset, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindMalformed).
//		Path("heap", "strings").
//		Offset(0x1234).
//		Detail("unterminated string record").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(errors.PhaseParse, "guid heap size %d not a multiple of 16", n)
//	err := errors.Unresolved(token, "TypeDef extends a missing TypeRef")
//
// Errors of KindInternal mark framework contract violations (planning sized a
// buffer wrong, a row codec wrote a different size than it declared). They
// indicate implementation bugs and are kept distinct from user-facing kinds;
// test with IsInternal.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
