package civic

import (
	"context"
	"log/slog"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/metrics"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MSG_REPORT_NOT_FOUND = "report not found"
	MSG_MEDIA_NOT_FOUND  = "media not found"
)

func (s *Service) ListReports(ctx context.Context) ([]civicTypes.Report, error) {
	reports, err := s.reports.GetReports(ctx)
	if err != nil {
		return nil, storeError(err, MSG_REPORT_NOT_FOUND, "list reports")
	}
	return reports, nil
}

func (s *Service) GetReport(ctx context.Context, id primitive.ObjectID) (civicTypes.Report, error) {
	report, err := s.reports.GetReportByID(ctx, id)
	if err != nil {
		return civicTypes.Report{}, storeError(err, MSG_REPORT_NOT_FOUND, "get report")
	}
	return report, nil
}

// CreateReport validates, spam-checks and stores a new report authored by authorID.
func (s *Service) CreateReport(ctx context.Context, authorID primitive.ObjectID, in CreateReportInput) (civicTypes.Report, error) {
	if err := validation.Struct(in); err != nil {
		return civicTypes.Report{}, AsError(err)
	}
	if err := s.checkSpam(ctx, in.Description); err != nil {
		return civicTypes.Report{}, err
	}

	report := civicTypes.Report{
		ID:            primitive.NewObjectID(),
		AuthorID:      authorID,
		Title:         in.Title,
		Description:   in.Description,
		Coordinates:   toCoordinates(in.Coordinates),
		Media:         []string{},
		Upvoters:      []primitive.ObjectID{},
		CreatedAt:     s.now(),
		LastUpdatedAt: nil,
		Status:        civicTypes.REPORT_STATUS_PROPOSED,
	}

	id, err := s.reports.AddReport(mutationContext(ctx), report)
	if err != nil {
		return civicTypes.Report{}, Internal("create report failed", err)
	}
	report.ID = id
	return report, nil
}

// PatchReport sets only the fields present in the payload and always bumps lastUpdatedAt.
func (s *Service) PatchReport(ctx context.Context, id primitive.ObjectID, in PatchReportInput) error {
	if err := validation.Struct(in); err != nil {
		return AsError(err)
	}
	if in.Description != nil {
		if err := s.checkSpam(ctx, *in.Description); err != nil {
			return err
		}
	}

	update := civicTypes.ReportUpdate{
		Title:         in.Title,
		Description:   in.Description,
		Coordinates:   toCoordinates(in.Coordinates),
		Status:        in.Status,
		LastUpdatedAt: s.now(),
	}
	err := s.reports.UpdateReport(mutationContext(ctx), id, update)
	return storeError(err, MSG_REPORT_NOT_FOUND, "patch report")
}

// DeleteReport removes the report together with its solutions. Deleting an unknown id succeeds.
// Media blobs are removed after the commit; failures there leave orphans for the cleanup job.
func (s *Service) DeleteReport(ctx context.Context, id primitive.ObjectID) error {
	ctx = mutationContext(ctx)

	var media []string
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		report, err := s.reports.GetReportByID(txCtx, id)
		if err != nil {
			if isNoMatch(err) {
				return nil
			}
			return err
		}
		media = report.Media

		if _, err := s.reports.DeleteReport(txCtx, id); err != nil {
			return err
		}
		removed, err := s.solutions.DeleteSolutionsForReport(txCtx, id)
		if err != nil {
			return err
		}
		if removed > 0 {
			slog.Debug("deleted solutions of report", slog.String("reportId", id.Hex()), slog.Int64("count", removed))
		}
		return nil
	})
	if err != nil {
		return storeError(err, MSG_REPORT_NOT_FOUND, "delete report")
	}

	for _, ref := range media {
		s.removeBlobBestEffort(ctx, ref, metrics.BLOB_OP_REMOVE)
	}
	return nil
}

// ToggleUpvote adds or removes voterID from the report's upvoters. Repeating an action is a no-op.
func (s *Service) ToggleUpvote(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID, action civicTypes.VoteAction) error {
	ctx = mutationContext(ctx)

	var err error
	switch action {
	case civicTypes.VOTE_ACTION_UP:
		err = s.reports.AddUpvoter(ctx, id, voterID)
	case civicTypes.VOTE_ACTION_DOWN:
		err = s.reports.RemoveUpvoter(ctx, id, voterID)
	default:
		return InvalidQueryParameter("action", action.String(), "action must be one of up, down")
	}
	return storeError(err, MSG_REPORT_NOT_FOUND, "toggle upvote")
}
