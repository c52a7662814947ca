package writer

import (
	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/errors"
)

// Execute applies a plan's operations to a fresh buffer of the planned
// size. src is the source image copy operations read from. Execution is
// purely mechanical; any bounds violation here means the plan itself is
// defective, so every failure is an internal error.
func Execute(plan *Layout, src cilmeta.Backend) ([]byte, error) {
	buf := make([]byte, plan.TotalSize)
	var cursor uint64
	for i, op := range plan.Ops {
		end := op.Dst + op.Size
		if end < op.Dst || end > plan.TotalSize {
			return nil, errors.Internal(errors.PhaseWrite,
				"op %d writes [%d,%d) outside the planned %d-byte image", i, op.Dst, end, plan.TotalSize)
		}
		// Plans emit operations in ascending, non-overlapping order; a
		// violation means two ops disagree about who owns a region.
		if op.Dst < cursor {
			return nil, errors.Internal(errors.PhaseWrite,
				"op %d at offset %d overlaps previously written bytes up to %d", i, op.Dst, cursor)
		}
		cursor = end

		switch op.Kind {
		case OpLiteral:
			if uint64(len(op.Data)) != op.Size {
				return nil, errors.Internal(errors.PhaseWrite,
					"op %d carries %d literal bytes but declares size %d", i, len(op.Data), op.Size)
			}
			copy(buf[op.Dst:end], op.Data)
		case OpCopy:
			data, err := src.Slice(int(op.Src), int(op.Size))
			if err != nil {
				return nil, errors.Internal(errors.PhaseWrite,
					"op %d copies [%d,%d) outside the source image: %v", i, op.Src, op.Src+op.Size, err)
			}
			copy(buf[op.Dst:end], data)
		case OpZero:
			clear(buf[op.Dst:end])
		default:
			return nil, errors.Internal(errors.PhaseWrite, "op %d has unknown kind %d", i, op.Kind)
		}
	}
	return buf, nil
}
