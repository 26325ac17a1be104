package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

const (
	minScore = 0
	maxScore = 100
)

// Normalize validates a raw model response and reshapes it into a Draft.
// The match score is rounded and clamped; sub-scores are rounded and bounds-checked.
func Normalize(raw json.RawMessage) (Draft, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Draft{}, invalid("", "response is not valid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Draft{}, invalid("", "unexpected data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Draft{}, invalid("", "expected object, got %s", typeName(v))
	}
	return NormalizeObject(obj)
}

// NormalizeObject is Normalize for an already decoded JSON object.
func NormalizeObject(obj map[string]any) (Draft, error) {
	var d Draft

	score, err := requiredNumber(obj, "match_score", "match_score")
	if err != nil {
		return Draft{}, err
	}
	d.MatchScore = clampScore(roundScore(score))

	if d.ScoreBreakdown, err = normalizeBreakdown(obj); err != nil {
		return Draft{}, err
	}
	if d.MissingKeywords, err = normalizeMissingKeywords(obj); err != nil {
		return Draft{}, err
	}
	if d.NewBulletPoints, err = requiredStrings(obj, "new_bullet_points_to_add", "new_bullet_points_to_add"); err != nil {
		return Draft{}, err
	}
	if d.BulletsToRephrase, err = normalizeRephrases(obj); err != nil {
		return Draft{}, err
	}
	if d.Summary, err = requiredString(obj, "one_sentence_summary", "one_sentence_summary"); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func normalizeBreakdown(obj map[string]any) (ScoreBreakdown, error) {
	raw, ok := obj["score_breakdown"]
	if !ok {
		return ScoreBreakdown{}, invalid("score_breakdown", "required")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return ScoreBreakdown{}, invalid("score_breakdown", "expected object, got %s", typeName(raw))
	}

	var out ScoreBreakdown
	fields := []struct {
		key string
		dst *int
	}{
		{"hard_skills", &out.HardSkills},
		{"experience_level", &out.ExperienceLevel},
		{"keyword_density", &out.KeywordDensity},
		{"education_certs", &out.EducationCerts},
		{"title_alignment", &out.TitleAlignment},
	}
	for _, f := range fields {
		path := "score_breakdown." + f.key
		n, err := requiredNumber(m, f.key, path)
		if err != nil {
			return ScoreBreakdown{}, err
		}
		rounded := roundScore(n)
		if rounded < minScore || rounded > maxScore {
			return ScoreBreakdown{}, invalid(path, "must be between %d and %d, got %s", minScore, maxScore, formatNumber(n))
		}
		*f.dst = rounded
	}
	return out, nil
}

// normalizeMissingKeywords accepts the category list the model emits and
// the keyed form. In the list form a repeated category replaces the earlier one;
// in the keyed form names that collide once trimmed are rejected.
func normalizeMissingKeywords(obj map[string]any) (map[string][]string, error) {
	raw, ok := obj["missing_keywords"]
	if !ok {
		return nil, invalid("missing_keywords", "required")
	}

	out := map[string][]string{}
	switch v := raw.(type) {
	case []any:
		for i, item := range v {
			path := fmt.Sprintf("missing_keywords[%d]", i)
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, invalid(path, "expected object, got %s", typeName(item))
			}
			category, err := requiredString(entry, "category", path+".category")
			if err != nil {
				return nil, err
			}
			category = strings.TrimSpace(category)
			if category == "" {
				return nil, invalid(path+".category", "must not be empty")
			}
			keywords, err := requiredStrings(entry, "keywords", path+".keywords")
			if err != nil {
				return nil, err
			}
			out[category] = keywords
		}
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			category := strings.TrimSpace(name)
			path := "missing_keywords." + name
			if category == "" {
				return nil, invalid(path, "category must not be empty")
			}
			if _, dup := out[category]; dup {
				return nil, invalid(path, "category %q appears more than once", category)
			}
			keywords, err := toStrings(v[name], path)
			if err != nil {
				return nil, err
			}
			out[category] = keywords
		}
	default:
		return nil, invalid("missing_keywords", "expected array, got %s", typeName(raw))
	}
	return out, nil
}

func normalizeRephrases(obj map[string]any) ([]BulletRephrase, error) {
	raw, ok := obj["bullets_to_rephrase"]
	if !ok {
		return nil, invalid("bullets_to_rephrase", "required")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, invalid("bullets_to_rephrase", "expected array, got %s", typeName(raw))
	}
	out := make([]BulletRephrase, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("bullets_to_rephrase[%d]", i)
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(path, "expected object, got %s", typeName(item))
		}
		original, err := requiredString(entry, "original", path+".original")
		if err != nil {
			return nil, err
		}
		improved, err := requiredString(entry, "improved", path+".improved")
		if err != nil {
			return nil, err
		}
		out = append(out, BulletRephrase{Original: original, Improved: improved})
	}
	return out, nil
}

func requiredNumber(obj map[string]any, key, path string) (float64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, invalid(path, "required")
	}
	var (
		n   float64
		err error
	)
	switch v := raw.(type) {
	case json.Number:
		n, err = v.Float64()
		if err != nil {
			return 0, invalid(path, "expected number, got %q", v.String())
		}
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return 0, invalid(path, "expected number, got %s", typeName(raw))
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalid(path, "expected finite number")
	}
	return n, nil
}

func requiredString(obj map[string]any, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", invalid(path, "required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalid(path, "expected string, got %s", typeName(raw))
	}
	return s, nil
}

func requiredStrings(obj map[string]any, key, path string) ([]string, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, invalid(path, "required")
	}
	return toStrings(raw, path)
}

func toStrings(raw any, path string) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(fmt.Sprintf("%s[%d]", path, i), "expected string, got %s", typeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid(path, "expected array, got %s", typeName(raw))
	}
}

// roundScore rounds half away from zero and saturates far outside the int range.
func roundScore(n float64) int {
	r := math.Round(n)
	switch {
	case r > math.MaxInt32:
		return math.MaxInt32
	case r < math.MinInt32:
		return math.MinInt32
	}
	return int(r)
}

func clampScore(n int) int {
	if n < minScore {
		return minScore
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

func formatNumber(n float64) string {
	return fmt.Sprintf("%g", n)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
