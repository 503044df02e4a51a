package civic

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/civic-lens/civic-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMediaName(ext string) string {
	return uuid.NewString() + ext
}

func (s *Service) ListMedia(ctx context.Context, reportID primitive.ObjectID) ([]string, error) {
	report, err := s.reports.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, storeError(err, MSG_REPORT_NOT_FOUND, "list media")
	}
	if report.Media == nil {
		return []string{}, nil
	}
	return report.Media, nil
}

// AttachMedia moves the staged upload at tempPath into the blob store and appends its reference to
// the report. The reference push and the blob move share one transaction: a failed move aborts
// the push, a failed commit removes the stored blob again. tempPath is gone when this returns.
func (s *Service) AttachMedia(ctx context.Context, reportID primitive.ObjectID, tempPath string, ext string) (string, error) {
	ctx = mutationContext(ctx)
	defer removeTempFile(tempPath)

	name := s.newName(ext)
	ref := s.blobs.Reference(name)

	stored := false
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reports.PushReportMedia(txCtx, reportID, ref); err != nil {
			return err
		}
		storedRef, err := s.blobs.Put(txCtx, tempPath, name)
		metrics.RecordBlobOperation(metrics.BLOB_OP_PUT, err)
		if err != nil {
			return err
		}
		if storedRef != ref {
			slog.Warn("blob store returned unexpected reference", slog.String("expected", ref), slog.String("got", storedRef))
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			slog.Error("media attach failed after blob was stored, compensating",
				slog.String("reportId", reportID.Hex()),
				slog.String("ref", ref),
				slog.String("error", err.Error()),
			)
			s.removeBlobBestEffort(ctx, ref, metrics.BLOB_OP_COMPENSATE)
		}
		return "", storeError(err, MSG_REPORT_NOT_FOUND, "attach media")
	}
	return ref, nil
}

// DetachMedia pulls ref from the report's media list and then removes the blob. Only references
// currently attached to this report can be removed.
func (s *Service) DetachMedia(ctx context.Context, reportID primitive.ObjectID, ref string) error {
	if ref == "" {
		return InvalidQueryParameter("media", ref, "media reference is required")
	}
	ctx = mutationContext(ctx)

	if err := s.reports.PullReportMedia(ctx, reportID, ref); err != nil {
		if !isNoMatch(err) {
			return storeError(err, MSG_MEDIA_NOT_FOUND, "detach media")
		}
		exists, existsErr := s.reports.ReportExists(ctx, reportID)
		if existsErr != nil {
			return storeError(existsErr, MSG_REPORT_NOT_FOUND, "detach media")
		}
		if !exists {
			return NotFound(MSG_REPORT_NOT_FOUND)
		}
		return NotFound(MSG_MEDIA_NOT_FOUND)
	}

	s.removeBlobBestEffort(ctx, ref, metrics.BLOB_OP_REMOVE)
	return nil
}

func (s *Service) removeBlobBestEffort(ctx context.Context, ref string, op string) {
	err := s.blobs.Remove(ctx, ref)
	metrics.RecordBlobOperation(op, err)
	if err != nil {
		slog.Error("failed to remove blob, left for orphan cleanup",
			slog.String("ref", ref),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

func removeTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temporary upload", slog.String("path", path), slog.String("error", err.Error()))
	}
}
