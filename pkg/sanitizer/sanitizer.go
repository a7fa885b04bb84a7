package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"aerolabel/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reWhitespace = regexp.MustCompile(`\s+`)

func upper(s string) string {
	return strings.ToUpper(s)
}

func stripSpaces(s string) string {
	return reWhitespace.ReplaceAllString(s, "")
}

// TrimAndNormalize trims s and collapses every whitespace run to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeClass(class string) string {
	return TrimAndNormalize(class)
}

func NormalizeRegion(region string) string {
	p := Pipeline{strings.TrimSpace, upper}
	return p.Apply(region)
}

// NormalizeRegistration returns nil for a missing or blank registration.
func NormalizeRegistration(reg *string) *string {
	if reg == nil {
		return nil
	}
	p := Pipeline{stripSpaces, upper}
	s := p.Apply(*reg)
	if s == "" {
		return nil
	}
	return &s
}

// SanitizePrediction normalizes the free-text fields of p in place.
// The resource id is only trimmed since it names a file.
func SanitizePrediction(p *model.AIPrediction) {
	if p == nil {
		return
	}
	p.ResourceID = strings.TrimSpace(p.ResourceID)
	p.AircraftClass = NormalizeClass(p.AircraftClass)
	p.AirlineClass = NormalizeClass(p.AirlineClass)
	p.RegistrationRegion = NormalizeRegion(p.RegistrationRegion)
	p.Registration = NormalizeRegistration(p.Registration)
}
