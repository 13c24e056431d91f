// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type seedRequest struct {
	SeedIDs   []string `json:"seed_ids" validate:"required,min=1,max=50,dive,entityid"`
	N         int      `json:"n" validate:"omitempty,min=1,max=100"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=content hybrid"`
	Diversity *float64 `json:"diversity" validate:"omitempty,gte=0,lte=1"`
}

func ptr(f float64) *float64 { return &f }

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input seedRequest
	}{
		{"single seed", seedRequest{SeedIDs: []string{"1"}}},
		{"full request", seedRequest{SeedIDs: []string{"1", "318"}, N: 100, Mode: "hybrid", Diversity: ptr(0.5)}},
		{"diversity bounds", seedRequest{SeedIDs: []string{"tt0111161"}, Diversity: ptr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	many := make([]string, 51)
	for i := range many {
		many[i] = "m"
	}

	tests := []struct {
		name      string
		input     seedRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"missing seeds", seedRequest{}, "seed_ids", "required", "seed_ids is required"},
		{"empty seeds", seedRequest{SeedIDs: []string{}}, "seed_ids", "min", "seed_ids must be at least 1 items"},
		{"too many seeds", seedRequest{SeedIDs: many}, "seed_ids", "max", "seed_ids must be at most 50 items"},
		{"blank seed", seedRequest{SeedIDs: []string{"1", "  "}}, "seed_ids[1]", "entityid", "non-blank identifier"},
		{"n too large", seedRequest{SeedIDs: []string{"1"}, N: 101}, "n", "max", "n must be at most 100"},
		{"unknown mode", seedRequest{SeedIDs: []string{"1"}, Mode: "cf"}, "mode", "oneof", "mode must be one of: content hybrid"},
		{"diversity above one", seedRequest{SeedIDs: []string{"1"}, Diversity: ptr(1.5)}, "diversity", "lte", "diversity must be less than or equal to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if !strings.Contains(errs[0].Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&seedRequest{SeedIDs: []string{"1"}, N: 500})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "n must be at most 100" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "n" {
		t.Errorf("Details[field] = %v, want n", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&seedRequest{N: 500, Mode: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field errors, want 3", len(fields))
	}
	for _, want := range []string{"seed_ids:", "n:", "mode:"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q missing %q", apiErr.Message, want)
		}
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
	if (&RequestValidationError{}).Error() != "validation failed" {
		t.Error("empty Error() should be \"validation failed\"")
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1", true},
		{"user-42", true},
		{"Amélie", true},
		{"", false},
		{"   ", false},
		{"a\nb", false},
		{strings.Repeat("x", MaxIDLength), true},
		{strings.Repeat("x", MaxIDLength+1), false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
