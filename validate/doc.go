// Package validate gates metadata images with configurable strictness.
//
// Two validator families exist. Raw validators run against a freshly
// parsed image before resolution and check structure: cardinality,
// heap record integrity, cross-table bounds. Owned validators run
// against the resolved object graph and check semantics: inheritance
// and containment graphs, identifier content, version sanity.
//
// Validators are independent and side-effect-free, so the engine runs
// them in parallel and collects every violation instead of stopping at
// the first, unless a fatal violation fires under a fail-fast config.
package validate
