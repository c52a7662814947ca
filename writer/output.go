package writer

import (
	"os"

	"go.uber.org/zap"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/builder"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// Verify reparses written bytes and checks them against the plan that
// produced them. A mismatch is an internal defect of the pipeline, never
// an input problem.
func Verify(plan *Layout, data []byte) error {
	if uint64(len(data)) != plan.TotalSize {
		return errors.Internal(errors.PhaseWrite,
			"output is %d bytes, plan is %d", len(data), plan.TotalSize)
	}
	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	if err != nil {
		return errors.Internal(errors.PhaseWrite, "written image does not reparse: %v", err)
	}
	if img.Root.Version != plan.Version {
		return errors.Internal(errors.PhaseWrite,
			"written version %q, planned %q", img.Root.Version, plan.Version)
	}
	for _, sh := range plan.Streams {
		got := img.Root.Stream(sh.Name)
		if got == nil {
			return errors.Internal(errors.PhaseWrite, "written image lost stream %s", sh.Name)
		}
		if got.Offset != sh.Offset || got.Size != sh.Size {
			return errors.Internal(errors.PhaseWrite,
				"stream %s written at [%d,+%d), planned [%d,+%d)", sh.Name, got.Offset, got.Size, sh.Offset, sh.Size)
		}
	}
	for _, id := range cil.AllTableIDs() {
		if got := img.Tables.RowCount(id); got != plan.Sizes.RowCounts[id] {
			return errors.Internal(errors.PhaseWrite,
				"%s written with %d rows, planned %d", id, got, plan.Sizes.RowCounts[id])
		}
	}
	return nil
}

// Write runs the full pipeline: plan the layout from the context's staged
// state, execute it against the source image, and verify the result.
// src must be the backend the context's image was opened from.
func Write(ctx *builder.Context, src cilmeta.Backend) ([]byte, error) {
	plan, err := Plan(ctx)
	if err != nil {
		return nil, err
	}
	data, err := Execute(plan, src)
	if err != nil {
		return nil, err
	}
	if err := Verify(plan, data); err != nil {
		return nil, err
	}
	Logger().Debug("image written", zap.Int("bytes", len(data)))
	return data, nil
}

// WriteFile writes the regenerated image to path.
func WriteFile(ctx *builder.Context, src cilmeta.Backend, path string) error {
	data, err := Write(ctx, src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WriteFailed("write image file", err)
	}
	return nil
}
