// Package writer regenerates a metadata image from a mutation context.
//
// Writing runs in three stages. Plan computes the complete output layout
// up front: final row counts after rid compaction, index widths, rebuilt
// heaps, and a flat list of mechanical operations that together produce
// the image. Execute applies those operations to a pre-sized buffer and
// performs no layout decisions of its own. Verify reparses the produced
// bytes and checks them against the plan.
//
// The split keeps every failure mode in its place: dangling references
// and width overflows surface during planning, while any disagreement
// between plan and output is an internal defect, never a corrupt file
// handed to the caller.
package writer
