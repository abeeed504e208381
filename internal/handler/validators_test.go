package handler

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestIndianStateValidation(t *testing.T) {
	v := validator.New()
	if err := v.RegisterValidation("indianstate", validIndianState); err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}

	tests := []struct {
		value string
		valid bool
	}{
		{"Haryana", true},
		{"haryana", true},
		{"  Tamil Nadu  ", true},
		{"Delhi", true},
		{"Jammu and Kashmir", true},
		{"Texas", false},
		{"", false},
		{"Hariyana", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Var(tt.value, "indianstate")
			if tt.valid && err != nil {
				t.Errorf("%q rejected: %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("%q accepted, want rejection", tt.value)
			}
		})
	}
}
