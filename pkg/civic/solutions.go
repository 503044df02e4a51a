package civic

import (
	"context"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MSG_SOLUTION_NOT_FOUND = "solution not found"

func (s *Service) ListSolutions(ctx context.Context) ([]civicTypes.Solution, error) {
	solutions, err := s.solutions.GetSolutions(ctx)
	if err != nil {
		return nil, storeError(err, MSG_SOLUTION_NOT_FOUND, "list solutions")
	}
	return solutions, nil
}

func (s *Service) GetSolution(ctx context.Context, id primitive.ObjectID) (civicTypes.Solution, error) {
	solution, err := s.solutions.GetSolutionByID(ctx, id)
	if err != nil {
		return civicTypes.Solution{}, storeError(err, MSG_SOLUTION_NOT_FOUND, "get solution")
	}
	return solution, nil
}

// CreateSolution stores a solution for an existing report. The parent check and the insert run
// in one transaction so a concurrent report delete cannot leave a dangling solution.
func (s *Service) CreateSolution(ctx context.Context, authorID primitive.ObjectID, in CreateSolutionInput) (civicTypes.Solution, error) {
	if err := validation.Struct(in); err != nil {
		return civicTypes.Solution{}, AsError(err)
	}
	reportID, err := validation.ParseObjectID("reportId", in.ReportID)
	if err != nil {
		return civicTypes.Solution{}, AsError(err)
	}
	if err := s.checkSpam(ctx, in.Description); err != nil {
		return civicTypes.Solution{}, err
	}

	solution := civicTypes.Solution{
		ID:            primitive.NewObjectID(),
		ReportID:      reportID,
		AuthorID:      authorID,
		Title:         in.Title,
		Description:   in.Description,
		CreatedAt:     s.now(),
		LastUpdatedAt: nil,
		Status:        civicTypes.SOLUTION_STATUS_PROPOSED,
		Budget:        nil,
	}

	ctx = mutationContext(ctx)
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		exists, err := s.reports.ReportExists(txCtx, reportID)
		if err != nil {
			return err
		}
		if !exists {
			return NotFound(MSG_REPORT_NOT_FOUND)
		}
		id, err := s.solutions.AddSolution(txCtx, solution)
		if err != nil {
			return Internal("create solution failed", err)
		}
		solution.ID = id
		return nil
	})
	if err != nil {
		return civicTypes.Solution{}, storeError(err, MSG_SOLUTION_NOT_FOUND, "create solution")
	}
	return solution, nil
}

func (s *Service) PatchSolution(ctx context.Context, id primitive.ObjectID, in PatchSolutionInput) error {
	if err := validation.Struct(in); err != nil {
		return AsError(err)
	}
	if in.Description != nil {
		if err := s.checkSpam(ctx, *in.Description); err != nil {
			return err
		}
	}

	update := civicTypes.SolutionUpdate{
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		LastUpdatedAt: s.now(),
	}
	err := s.solutions.UpdateSolution(mutationContext(ctx), id, update)
	return storeError(err, MSG_SOLUTION_NOT_FOUND, "patch solution")
}

// DeleteSolution is idempotent.
func (s *Service) DeleteSolution(ctx context.Context, id primitive.ObjectID) error {
	err := s.solutions.DeleteSolution(mutationContext(ctx), id)
	if err != nil && !isNoMatch(err) {
		return storeError(err, MSG_SOLUTION_NOT_FOUND, "delete solution")
	}
	return nil
}

// SetBudget replaces the solution's budget. A nil input clears it.
func (s *Service) SetBudget(ctx context.Context, id primitive.ObjectID, in *BudgetInput) error {
	if err := ValidateBudget(in); err != nil {
		return AsError(err)
	}
	err := s.solutions.SetSolutionBudget(mutationContext(ctx), id, in.toBudget(), s.now())
	return storeError(err, MSG_SOLUTION_NOT_FOUND, "set budget")
}
