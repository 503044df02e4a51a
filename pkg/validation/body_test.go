package validation

import (
	"errors"
	"strings"
	"testing"
)

type testCoordinates struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type testCreate struct {
	Title       string            `json:"title" validate:"required,min=1,max=300"`
	Description string            `json:"description" validate:"required,min=1,max=10000"`
	Coordinates []testCoordinates `json:"coordinates" validate:"required,min=1,dive"`
}

type testPatch struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=300"`
	Status *string `json:"status" validate:"omitempty,reportstatus"`
}

func violationFields(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	fields := []string{}
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name: "valid create payload",
			body: `{"title":"Pothole","description":"Large pothole on Main St","coordinates":[{"latitude":1.0,"longitude":2.0}]}`,
		},
		{
			name:       "every missing field is reported",
			body:       `{}`,
			wantFields: []string{"title", "description", "coordinates"},
		},
		{
			name:       "empty coordinate list",
			body:       `{"title":"a","description":"b","coordinates":[]}`,
			wantFields: []string{"coordinates"},
		},
		{
			name:       "out of range latitude and missing longitude",
			body:       `{"title":"a","description":"b","coordinates":[{"latitude":91}]}`,
			wantFields: []string{"coordinates[0].latitude", "coordinates[0].longitude"},
		},
		{
			name:       "wrong type",
			body:       `{"title":5,"description":"b","coordinates":[{"latitude":1,"longitude":1}]}`,
			wantFields: []string{"title"},
		},
		{
			name:       "malformed json",
			body:       `{"title":`,
			wantFields: []string{""},
		},
		{
			name: "unknown keys are dropped",
			body: `{"title":"a","description":"b","coordinates":[{"latitude":1,"longitude":1}],"media":["x"],"upvoters":["y"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst testCreate
			err := DecodeAndValidate(strings.NewReader(tt.body), &dst)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			got := violationFields(err)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("violations = %v, want %v", got, tt.wantFields)
			}
			for i := range got {
				if got[i] != tt.wantFields[i] {
					t.Errorf("violation[%d] = %q, want %q", i, got[i], tt.wantFields[i])
				}
			}
		})
	}
}

func TestOptionalPresence(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "empty object is a valid patch", body: `{}`},
		{name: "known status", body: `{"status":"implementing"}`},
		{name: "unknown status", body: `{"status":"archived"}`, wantFields: []string{"status"}},
		{name: "empty title", body: `{"title":""}`, wantFields: []string{"title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst testPatch
			err := DecodeAndValidate(strings.NewReader(tt.body), &dst)
			got := violationFields(err)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("violations = %v (err %v), want %v", got, err, tt.wantFields)
			}
		})
	}
}

func TestParseObjectID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: "65a1f0c2e4b0a1b2c3d4e5f6"},
		{name: "uppercase hex", raw: "65A1F0C2E4B0A1B2C3D4E5F6"},
		{name: "too short", raw: "65a1f0", wantErr: true},
		{name: "not hex", raw: "zza1f0c2e4b0a1b2c3d4e5f6", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObjectID("id", tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObjectID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var idErr *InvalidIdentifierError
			if !errors.As(err, &idErr) {
				t.Fatalf("expected *InvalidIdentifierError, got %T", err)
			}
			if idErr.Param != "id" || idErr.Value != tt.raw {
				t.Errorf("error carries %q=%q", idErr.Param, idErr.Value)
			}
		})
	}
}

type testBudgetLike struct {
	Title       string   `json:"title" validate:"required,min=1"`
	Description string   `json:"description" validate:"required,min=1"`
	Cost        *float64 `json:"cost" validate:"omitempty,gte=0"`
}

func TestTypeMismatchKeepsOtherViolations(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantRules map[string]string
	}{
		{
			name: "type, required and range violations together",
			body: `{"title":5,"description":"","cost":-1}`,
			wantRules: map[string]string{
				"title":       "type",
				"description": "required",
				"cost":        "gte",
			},
		},
		{
			name: "mismatched field is not also reported as missing",
			body: `{"title":true,"description":"ok"}`,
			wantRules: map[string]string{
				"title": "type",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst testBudgetLike
			err := DecodeAndValidate(strings.NewReader(tt.body), &dst)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Violations) != len(tt.wantRules) {
				t.Fatalf("violations = %+v, want %v", verr.Violations, tt.wantRules)
			}
			for _, v := range verr.Violations {
				if want, ok := tt.wantRules[v.Field]; !ok || want != v.Rule {
					t.Errorf("unexpected violation %+v", v)
				}
			}
		})
	}
}

func TestTypeMismatchInNestedList(t *testing.T) {
	var dst testCreate
	err := DecodeJSON(strings.NewReader(`{"title":"","description":"b","coordinates":[{"latitude":"north","longitude":1}]}`), &dst)

	got := violationFields(err)
	want := []string{"coordinates.latitude", "title"}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("violation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTypeMismatchThroughDoublePointer(t *testing.T) {
	var dst *testBudgetLike
	err := DecodeJSON(strings.NewReader(`{"title":"ok","description":"ok","cost":"free"}`), &dst)

	got := violationFields(err)
	if len(got) != 1 || got[0] != "cost" {
		t.Fatalf("violations = %v, want [cost]", got)
	}
}
