package orchestrator

import (
	"regexp"
	"strconv"

	"github.com/hrygo/acutie/plugin/ai/conversation"
)

var (
	namePattern = regexp.MustCompile(`(?:[Mm]y name is|[Mm]y name's|[Cc]all me|[Nn]ame\s*[:\-]|I'm|I am|[Ii]t's)\s+([A-Z][a-zA-Z'\-]+)`)
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?\s*old|yrs?\s*old|y/?o)\b`),
		regexp.MustCompile(`(?i)\bage[d]?\s*[:\-]?\s*(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\b(?:i'm|i am)\s+(\d{1,3})\b`),
		regexp.MustCompile(`\b(\d{1,3})\b`),
	}
	genderPatterns = []struct {
		gender  string
		pattern *regexp.Regexp
	}{
		{"non-binary", regexp.MustCompile(`(?i)\b(?:non[\s-]?binary|enby|genderqueer|they/them)\b`)},
		{"female", regexp.MustCompile(`(?i)\b(?:female|woman|girl|she/her)\b`)},
		{"male", regexp.MustCompile(`(?i)\b(?:male|man|guy|boy|he/him)\b`)},
	}
)

// notNames are capitalized words that follow "I'm" without being a name.
var notNames = map[string]bool{
	"Not": true, "Feeling": true, "Fine": true, "Okay": true, "Ok": true, "Just": true,
	"Male": true, "Female": true, "Non": true, "Sorry": true, "Here": true,
}

const (
	minAge = 10
	maxAge = 120
)

// ParseDemographics reads name, age and gender from a reply to the combined
// demographics question. Fields that cannot be found stay empty.
func ParseDemographics(text string) conversation.Demographics {
	var d conversation.Demographics

	if m := namePattern.FindStringSubmatch(text); m != nil && !notNames[m[1]] {
		d.Name = m[1]
	}

	for _, p := range agePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			age, err := strconv.Atoi(m[1])
			if err == nil && age >= minAge && age <= maxAge {
				d.Age = age
				break
			}
		}
		if d.Age > 0 {
			break
		}
	}

	for _, g := range genderPatterns {
		if g.pattern.MatchString(text) {
			d.Gender = g.gender
			break
		}
	}
	return d
}
