package validation

import (
	"errors"
	"testing"
)

func TestValidateCategory_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantNorm string
	}{
		{"observations", "observations", "observations"},
		{"forecasts", "forecasts", "forecasts"},
		{"upper case", "Forecasts", "forecasts"},
		{"trimmed", "  observations ", "observations"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateCategory(tc.input)
			if err != nil {
				t.Fatalf("ValidateCategory(%q) error = %v", tc.input, err)
			}
			if got != tc.wantNorm {
				t.Errorf("ValidateCategory(%q) = %q, want %q", tc.input, got, tc.wantNorm)
			}
		})
	}
}

func TestValidateCategory_Unknown(t *testing.T) {
	for _, input := range []string{"", "   ", "observation", "forecasts.json", "../forecasts"} {
		t.Run(input, func(t *testing.T) {
			_, err := ValidateCategory(input)
			if !errors.Is(err, ErrUnknownCategory) {
				t.Errorf("ValidateCategory(%q) error = %v, want ErrUnknownCategory", input, err)
			}
		})
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		code    int
		wantErr bool
	}{
		{51106, false},
		{1, false},
		{0, true},
		{-230000, true},
	}
	for _, tc := range tests {
		err := ValidateCode("station_id", tc.code)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateCode(%d) error = %v, wantErr %v", tc.code, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidCode) {
			t.Errorf("ValidateCode(%d) error = %v, want ErrInvalidCode", tc.code, err)
		}
	}
}

func TestValidateChoice(t *testing.T) {
	got, err := ValidateChoice("output.mode", " STORE ", "stdout", "store")
	if err != nil || got != "store" {
		t.Errorf("ValidateChoice() = %q, %v, want store, nil", got, err)
	}
	if _, err := ValidateChoice("output.mode", "file", "stdout", "store"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("ValidateChoice(file) error = %v, want ErrInvalidChoice", err)
	}
}
