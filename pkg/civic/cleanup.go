package civic

import (
	"context"
	"log/slog"
	"time"

	"github.com/civic-lens/civic-backend/pkg/blobstore"
	"github.com/civic-lens/civic-backend/pkg/metrics"
)

type MediaReferenceChecker interface {
	IsMediaReferenced(ctx context.Context, ref string) (bool, error)
}

type SweepResult struct {
	Checked int
	Skipped int
	Removed int
	Failed  int
}

// SweepOrphanedMedia removes blobs that no report references. Blobs modified after olderThan are
// skipped so that an attach still in flight does not lose its file.
func SweepOrphanedMedia(
	ctx context.Context,
	blobs blobstore.Store,
	refs MediaReferenceChecker,
	olderThan time.Time,
	dryRun bool,
) (SweepResult, error) {
	result := SweepResult{}

	infos, err := blobs.List(ctx)
	if err != nil {
		return result, err
	}

	for _, info := range infos {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++

		if info.ModTime.After(olderThan) {
			result.Skipped++
			continue
		}

		referenced, err := refs.IsMediaReferenced(ctx, info.Ref)
		if err != nil {
			slog.Error("Failed to check media reference", slog.String("ref", info.Ref), slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		if referenced {
			continue
		}

		if dryRun {
			slog.Info("Orphaned media found (dry run)", slog.String("ref", info.Ref), slog.Int64("size", info.Size))
			result.Removed++
			continue
		}

		slog.Info("Report for media not found, removing blob", slog.String("ref", info.Ref))
		err = blobs.Remove(ctx, info.Ref)
		metrics.RecordBlobOperation(metrics.BLOB_OP_ORPHAN_SWEEP, err)
		if err != nil {
			slog.Error("Failed to remove blob", slog.String("ref", info.Ref), slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		result.Removed++
	}
	return result, nil
}
