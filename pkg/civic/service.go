package civic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/civic-lens/civic-backend/pkg/blobstore"
	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReportStore is the document store view of the reports collection. Methods addressing a single
// report return mongo.ErrNoDocuments when nothing matched.
type ReportStore interface {
	GetReports(ctx context.Context) ([]civicTypes.Report, error)
	GetReportByID(ctx context.Context, id primitive.ObjectID) (civicTypes.Report, error)
	ReportExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddReport(ctx context.Context, report civicTypes.Report) (primitive.ObjectID, error)
	UpdateReport(ctx context.Context, id primitive.ObjectID, update civicTypes.ReportUpdate) error
	DeleteReport(ctx context.Context, id primitive.ObjectID) (bool, error)
	PushReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error
	PullReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error
	AddUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error
	RemoveUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error
}

type SolutionStore interface {
	GetSolutions(ctx context.Context) ([]civicTypes.Solution, error)
	GetSolutionByID(ctx context.Context, id primitive.ObjectID) (civicTypes.Solution, error)
	AddSolution(ctx context.Context, solution civicTypes.Solution) (primitive.ObjectID, error)
	UpdateSolution(ctx context.Context, id primitive.ObjectID, update civicTypes.SolutionUpdate) error
	SetSolutionBudget(ctx context.Context, id primitive.ObjectID, budget *civicTypes.Budget, updatedAt time.Time) error
	DeleteSolution(ctx context.Context, id primitive.ObjectID) error
	DeleteSolutionsForReport(ctx context.Context, reportID primitive.ObjectID) (int64, error)
}

// Transactor runs fn atomically against the document store. Store calls made with the context
// handed to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

type SpamChecker interface {
	IsSpam(ctx context.Context, text string) bool
}

// Service is the resource mutation pipeline for reports, solutions, media and upvotes.
type Service struct {
	reports   ReportStore
	solutions SolutionStore
	tx        Transactor
	blobs     blobstore.Store
	spam      SpamChecker
	now       func() time.Time
	newName   func(ext string) string
}

func NewService(
	reports ReportStore,
	solutions SolutionStore,
	tx Transactor,
	blobs blobstore.Store,
	spam SpamChecker,
) *Service {
	return &Service{
		reports:   reports,
		solutions: solutions,
		tx:        tx,
		blobs:     blobs,
		spam:      spam,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newName:   newMediaName,
	}
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) checkSpam(ctx context.Context, text string) error {
	if s.spam == nil || text == "" {
		return nil
	}
	if s.spam.IsSpam(ctx, text) {
		return SpamRejected(text)
	}
	return nil
}

// mutationContext detaches a mutation from request cancellation. A client that hangs up must not
// abort a half-applied multi-store change.
func mutationContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func isNoMatch(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// storeError maps document store errors. A missed match becomes NotFound and a failed commit
// InternalError, every other store failure is a StorageError.
func storeError(err error, notFoundMsg string, op string) error {
	if err == nil {
		return nil
	}
	if isNoMatch(err) {
		return NotFound(notFoundMsg)
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr
	}
	var sErr *blobstore.StorageError
	if errors.As(err, &sErr) {
		return StorageFailure("blob storage failure", err)
	}
	if errors.Is(err, db.ErrCommitFailed) {
		return Internal(op+" failed", err)
	}
	slog.Error("document store operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return StorageFailure(op+" failed", err)
}
