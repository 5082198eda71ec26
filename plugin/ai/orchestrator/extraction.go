package orchestrator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hrygo/acutie/plugin/ai/conversation"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSONObject returns the outermost {...} of a model reply,
// looking inside a fenced block first.
func extractJSONObject(text string) (string, bool) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseExtraction decodes the response_extraction reply into name/value pairs.
// Values are flattened to strings; null and empty values are dropped.
func ParseExtraction(text string) (map[string]string, error) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in extraction reply")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		if s := flatten(v); s != "" {
			fields[k] = s
		}
	}
	return fields, nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(x))
		for _, k := range keys {
			if s := flatten(x[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}

var severityRisk = map[string]conversation.RiskLevel{
	"MILD":     conversation.RiskLow,
	"MODERATE": conversation.RiskModerate,
	"SEVERE":   conversation.RiskHigh,
}

var severityPattern = regexp.MustCompile(`\b(MILD|MODERATE|SEVERE)\b`)

// ParseSeverity returns the highest severity named in a diagnosis analysis
// as a risk level. The severity object is preferred; bare labels are the fallback.
func ParseSeverity(analysis string) (conversation.RiskLevel, bool) {
	var labels []string
	if raw, ok := extractJSONObject(analysis); ok {
		var parsed struct {
			Severity map[string]string `json:"severity"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			for _, s := range parsed.Severity {
				labels = append(labels, strings.ToUpper(strings.TrimSpace(s)))
			}
		}
	}
	if len(labels) == 0 {
		labels = severityPattern.FindAllString(strings.ToUpper(analysis), -1)
	}

	var (
		best  conversation.RiskLevel
		found bool
	)
	for _, l := range labels {
		level, ok := severityRisk[l]
		if !ok {
			continue
		}
		if !found || level.Rank() > best.Rank() {
			best, found = level, true
		}
	}
	return best, found
}
