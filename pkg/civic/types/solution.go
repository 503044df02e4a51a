package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Budget is owned by its Solution and always replaced as a whole.
type Budget struct {
	Cost            *float64   `bson:"cost,omitempty" json:"cost,omitempty"`
	CarbonFootprint *float64   `bson:"carbonFootprint,omitempty" json:"carbonFootprint,omitempty"`
	StartDate       *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate         *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

type Solution struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ReportID      primitive.ObjectID `bson:"reportId" json:"reportId"`
	AuthorID      primitive.ObjectID `bson:"authorId" json:"authorId"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	LastUpdatedAt *time.Time         `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
	Status        SolutionStatus     `bson:"status" json:"status"`
	Budget        *Budget            `bson:"budget" json:"budget"`
}
