package civic

import (
	"time"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/validation"
)

// Payloads accepted by the pipeline. Create payloads require every field; patch payloads use
// pointers so that absent fields stay nil. Media and upvoters are never accepted here.

type CoordinatesInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type CreateReportInput struct {
	Title       string             `json:"title" validate:"required,min=1,max=300"`
	Description string             `json:"description" validate:"required,min=1,max=10000"`
	Coordinates []CoordinatesInput `json:"coordinates" validate:"required,min=1,dive"`
}

type PatchReportInput struct {
	Title       *string                  `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string                  `json:"description" validate:"omitempty,min=1,max=300"`
	Coordinates []CoordinatesInput       `json:"coordinates" validate:"omitempty,min=1,dive"`
	Status      *civicTypes.ReportStatus `json:"status" validate:"omitempty,reportstatus"`
}

type CreateSolutionInput struct {
	ReportID    string `json:"reportId" validate:"required,mongodb"`
	Title       string `json:"title" validate:"required,min=1,max=300"`
	Description string `json:"description" validate:"required,min=1,max=10000"`
}

type PatchSolutionInput struct {
	Title       *string                    `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string                    `json:"description" validate:"omitempty,min=1,max=300"`
	Status      *civicTypes.SolutionStatus `json:"status" validate:"omitempty,solutionstatus"`
}

// BudgetInput replaces a solution's budget as a whole. Every subfield is optional.
type BudgetInput struct {
	Cost            *float64   `json:"cost" validate:"omitempty,gte=0,lte=1000000000000"`
	CarbonFootprint *float64   `json:"carbonFootprint" validate:"omitempty,gte=0,lte=10000000000"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
}

// ValidateBudget runs the tag rules and the date ordering rule and reports all violations together.
func ValidateBudget(in *BudgetInput) error {
	if in == nil {
		return nil
	}

	var verr *validation.ValidationError
	if err := validation.Struct(in); err != nil {
		ve, ok := err.(*validation.ValidationError)
		if !ok {
			return err
		}
		verr = ve
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		verr = verr.Add("endDate", "gtefield", "must not be before startDate")
	}
	if verr != nil {
		return verr
	}
	return nil
}

func toCoordinates(in []CoordinatesInput) []civicTypes.Coordinates {
	if in == nil {
		return nil
	}
	out := make([]civicTypes.Coordinates, len(in))
	for i, c := range in {
		out[i] = civicTypes.Coordinates{Latitude: *c.Latitude, Longitude: *c.Longitude}
	}
	return out
}

func (in *BudgetInput) toBudget() *civicTypes.Budget {
	if in == nil {
		return nil
	}
	b := &civicTypes.Budget{
		Cost:            in.Cost,
		CarbonFootprint: in.CarbonFootprint,
	}
	if in.StartDate != nil {
		t := in.StartDate.UTC()
		b.StartDate = &t
	}
	if in.EndDate != nil {
		t := in.EndDate.UTC()
		b.EndDate = &t
	}
	return b
}
