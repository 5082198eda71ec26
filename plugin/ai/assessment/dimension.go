// Package assessment tracks diagnostic dimension coverage and decides when an
// interview has gathered enough information for a final assessment.
package assessment

import (
	"strings"
	"unicode"
)

// Dimension is one of the fixed clinical-interview topics.
type Dimension string

const (
	DimensionDuration         Dimension = "duration"
	DimensionFrequency        Dimension = "frequency"
	DimensionIntensity        Dimension = "intensity"
	DimensionDailyImpact      Dimension = "daily_impact"
	DimensionTriggers         Dimension = "triggers"
	DimensionPhysicalSymptoms Dimension = "physical_symptoms"
	DimensionCoping           Dimension = "coping"
	DimensionSupportSystem    Dimension = "support_system"
)

// Category groups dimensions by clinical priority.
type Category string

const (
	CategoryCore    Category = "core"
	CategoryImpact  Category = "impact"
	CategoryContext Category = "context"
)

var (
	// CoreDimensions are always required before a diagnosis.
	CoreDimensions = []Dimension{DimensionDuration, DimensionFrequency, DimensionIntensity}
	// ImpactDimensions describe functional impact.
	ImpactDimensions = []Dimension{DimensionDailyImpact, DimensionTriggers}
	// ContextDimensions describe the surrounding situation.
	ContextDimensions = []Dimension{DimensionPhysicalSymptoms, DimensionCoping, DimensionSupportSystem}
)

// All returns the eight canonical dimensions in asking priority order.
func All() []Dimension {
	all := make([]Dimension, 0, 8)
	all = append(all, CoreDimensions...)
	all = append(all, ImpactDimensions...)
	return append(all, ContextDimensions...)
}

// aliases maps free-text names to canonical dimensions.
var aliases = map[string]Dimension{
	"duration": DimensionDuration, "how_long": DimensionDuration, "time_period": DimensionDuration,

	"frequency": DimensionFrequency, "how_often": DimensionFrequency, "occurrence": DimensionFrequency,

	"intensity": DimensionIntensity, "severity": DimensionIntensity, "scale": DimensionIntensity,
	"level": DimensionIntensity,

	"daily_impact": DimensionDailyImpact, "impact": DimensionDailyImpact, "functional_impact": DimensionDailyImpact,
	"daily_life": DimensionDailyImpact, "effect": DimensionDailyImpact, "impact_areas": DimensionDailyImpact,

	"triggers": DimensionTriggers, "causes": DimensionTriggers, "situations": DimensionTriggers,
	"events": DimensionTriggers,

	"physical_symptoms": DimensionPhysicalSymptoms, "physical": DimensionPhysicalSymptoms,
	"bodily": DimensionPhysicalSymptoms, "somatic": DimensionPhysicalSymptoms,

	"coping": DimensionCoping, "management": DimensionCoping, "tried": DimensionCoping,
	"strategies": DimensionCoping, "coping_mechanisms": DimensionCoping,

	"support_system": DimensionSupportSystem, "support": DimensionSupportSystem, "help": DimensionSupportSystem,
	"people": DimensionSupportSystem,
}

// Normalize maps a free-text dimension name to its canonical form.
// Unrecognized names come back in snake_case and do not count toward any category.
// Normalize is idempotent.
func Normalize(name string) Dimension {
	key := snakeCase(strings.TrimSpace(name))
	if d, ok := aliases[key]; ok {
		return d
	}
	return Dimension(key)
}

// IsCanonical reports whether d is one of the eight canonical dimensions.
func (d Dimension) IsCanonical() bool {
	_, ok := categories[d]
	return ok
}

// Category returns the category of a canonical dimension, or "" otherwise.
func (d Dimension) Category() Category {
	return categories[d]
}

var categories = func() map[Dimension]Category {
	m := make(map[Dimension]Category, 8)
	for _, d := range CoreDimensions {
		m[d] = CategoryCore
	}
	for _, d := range ImpactDimensions {
		m[d] = CategoryImpact
	}
	for _, d := range ContextDimensions {
		m[d] = CategoryContext
	}
	return m
}()

// snakeCase lowercases s, splitting camelCase words and replacing spaces and hyphens with underscores.
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && unicode.IsLower(runes[i-1]) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
