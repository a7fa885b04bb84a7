package sanitizer

import (
	"testing"

	"aerolabel/pkg/model"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Boeing 737  ", want: "Boeing 737"},
		{name: "multiple spaces between words", input: "Airbus    A320", want: "Airbus A320"},
		{name: "tabs and newlines", input: "Airbus\t\nA320", want: "Airbus A320"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Aér Lingus™ ", want: "Aér Lingus™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("TrimAndNormalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeRegistration(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		input *string
		want  *string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "blank becomes nil", input: str("  "), want: nil},
		{name: "uppercased", input: str("d-aixa"), want: str("D-AIXA")},
		{name: "inner whitespace removed", input: str(" 4X - EKA "), want: str("4X-EKA")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRegistration(tt.input)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("NormalizeRegistration() = %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("NormalizeRegistration() = nil, want %q", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("NormalizeRegistration() = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestSanitizePrediction(t *testing.T) {
	reg := " d-aixa "
	p := &model.AIPrediction{
		ResourceID:         "  img 001.jpg ",
		AircraftClass:      " Airbus  A320 ",
		AirlineClass:       "Lufthansa\t",
		RegistrationRegion: " de ",
		Registration:       &reg,
	}

	SanitizePrediction(p)

	if p.ResourceID != "img 001.jpg" {
		t.Errorf("ResourceID = %q", p.ResourceID)
	}
	if p.AircraftClass != "Airbus A320" {
		t.Errorf("AircraftClass = %q", p.AircraftClass)
	}
	if p.AirlineClass != "Lufthansa" {
		t.Errorf("AirlineClass = %q", p.AirlineClass)
	}
	if p.RegistrationRegion != "DE" {
		t.Errorf("RegistrationRegion = %q", p.RegistrationRegion)
	}
	if p.Registration == nil || *p.Registration != "D-AIXA" {
		t.Errorf("Registration = %v", p.Registration)
	}

	SanitizePrediction(nil)
}
