package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Report struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	AuthorID      primitive.ObjectID   `bson:"authorId" json:"authorId"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Coordinates   []Coordinates        `bson:"coordinates" json:"coordinates"`
	Media         []string             `bson:"media" json:"media"`       // blob store references, modified by attach/detach only
	Upvoters      []primitive.ObjectID `bson:"upvoters" json:"upvoters"` // set, modified by upvote toggle only
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	LastUpdatedAt *time.Time           `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
	Status        ReportStatus         `bson:"status" json:"status"`
}

// HasUpvoter reports whether voterID is in the upvoters set.
func (r *Report) HasUpvoter(voterID primitive.ObjectID) bool {
	for _, v := range r.Upvoters {
		if v == voterID {
			return true
		}
	}
	return false
}

func (r *Report) HasMedia(ref string) bool {
	for _, m := range r.Media {
		if m == ref {
			return true
		}
	}
	return false
}
