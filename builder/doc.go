// Package builder stages mutations against a parsed metadata image.
//
// A Context records heap appends and row add/update/remove operations
// without touching the original image bytes. Staged heap content lives in
// tail regions addressed past the original heap sizes; the write pipeline
// rebuilds the heaps and remaps every offset, so tail offsets are only
// provisional handles.
//
// Removal is never silently partial. RemoveRow with removeReferences set
// cascades over the pending rows that still point at the removed token;
// original rows that reference it are caught by layout planning, which
// rejects the plan rather than emit a dangling reference.
//
// Fluent per-table builders construct well-formed raw rows, validating
// their required fields before any row id is allocated. A Context is
// owned by one goroutine for the duration of an edit session.
package builder
