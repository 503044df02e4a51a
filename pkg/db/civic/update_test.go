package civic

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
)

func strPtr(s string) *string { return &s }

func TestReportUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	status := civicTypes.REPORT_STATUS_CONSIDERED

	tests := []struct {
		name   string
		update civicTypes.ReportUpdate
		want   bson.M
	}{
		{
			name:   "empty patch only touches lastUpdatedAt",
			update: civicTypes.ReportUpdate{LastUpdatedAt: now},
			want:   bson.M{"$set": bson.M{"lastUpdatedAt": now}},
		},
		{
			name:   "title and status",
			update: civicTypes.ReportUpdate{Title: strPtr("t"), Status: &status, LastUpdatedAt: now},
			want:   bson.M{"$set": bson.M{"lastUpdatedAt": now, "title": "t", "status": status}},
		},
		{
			name: "coordinates are replaced as a whole",
			update: civicTypes.ReportUpdate{
				Coordinates:   []civicTypes.Coordinates{{Latitude: 1, Longitude: 2}},
				LastUpdatedAt: now,
			},
			want: bson.M{"$set": bson.M{"lastUpdatedAt": now, "coordinates": []civicTypes.Coordinates{{Latitude: 1, Longitude: 2}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reportUpdateDocument(tt.update)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reportUpdateDocument() = %v, want %v", got, tt.want)
			}
			set := got["$set"].(bson.M)
			if _, ok := set["media"]; ok {
				t.Error("media must never be part of a generic patch")
			}
			if _, ok := set["upvoters"]; ok {
				t.Error("upvoters must never be part of a generic patch")
			}
		})
	}
}

func TestSolutionUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	got := solutionUpdateDocument(civicTypes.SolutionUpdate{Description: strPtr("d"), LastUpdatedAt: now})
	want := bson.M{"$set": bson.M{"lastUpdatedAt": now, "description": "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("solutionUpdateDocument() = %v, want %v", got, want)
	}
}
