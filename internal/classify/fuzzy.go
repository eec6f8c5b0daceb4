package classify

import (
	"strings"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// FuzzyConfig holds the knowledge-base fuzzy-match scoring constants. The
// defaults encode tuned heuristic behavior that downstream detection accuracy
// depends on; change them only with product input.
type FuzzyConfig struct {
	SubstringFactor float64 `yaml:"substring_factor" mapstructure:"substring_factor"`
	TokenFactor     float64 `yaml:"token_factor" mapstructure:"token_factor"`
	TokenOverlapMin float64 `yaml:"token_overlap_min" mapstructure:"token_overlap_min"`
	MinConfidence   float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// DefaultFuzzyConfig returns the production fuzzy-match constants.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{
		SubstringFactor: 0.5,
		TokenFactor:     0.3,
		TokenOverlapMin: 0.5,
		MinConfidence:   20,
	}
}

// BestEntryMatch scores columnName against every entry in a knowledge bucket
// and returns the best match, or nil if nothing clears the acceptance bar.
// Exact matches carry the stored confidence and are always accepted; partial
// (substring) and fuzzy (token overlap) matches are discounted by the config
// factors and accepted only at MinConfidence or above.
func BestEntryMatch(entries []model.Entry, columnName string, cfg FuzzyConfig) *model.Match {
	var best *model.Match
	for i := range entries {
		m := matchEntry(&entries[i], columnName, cfg)
		if m == nil {
			continue
		}
		if best == nil || m.Confidence > best.Confidence {
			best = m
		}
	}
	return best
}

func matchEntry(e *model.Entry, columnName string, cfg FuzzyConfig) *model.Match {
	stored := strings.ToLower(strings.TrimSpace(e.Name))
	probe := strings.ToLower(strings.TrimSpace(columnName))
	if stored == "" || probe == "" {
		return nil
	}

	if stored == probe {
		return &model.Match{
			MatchedColumn:  e.Name,
			Confidence:     float64(e.Confidence),
			MatchType:      model.MatchExact,
			DetectionCount: e.DetectionCount,
			SubType:        e.SubType,
		}
	}

	if strings.Contains(probe, stored) || strings.Contains(stored, probe) {
		conf := float64(e.Confidence) * cfg.SubstringFactor
		if conf < cfg.MinConfidence {
			return nil
		}
		return &model.Match{
			MatchedColumn:  e.Name,
			Confidence:     conf,
			MatchType:      model.MatchPartial,
			DetectionCount: e.DetectionCount,
			SubType:        e.SubType,
		}
	}

	shared := sharedTokens(tokenize(stored), tokenize(probe))
	if shared == 0 {
		return nil
	}
	shorter := min(len(tokenize(stored)), len(tokenize(probe)))
	if float64(shared)/float64(shorter) < cfg.TokenOverlapMin {
		return nil
	}
	conf := float64(e.Confidence) * cfg.TokenFactor * float64(shared)
	if conf > 100 {
		conf = 100
	}
	if conf < cfg.MinConfidence {
		return nil
	}
	return &model.Match{
		MatchedColumn:  e.Name,
		Confidence:     conf,
		MatchType:      model.MatchFuzzy,
		DetectionCount: e.DetectionCount,
		SubType:        e.SubType,
	}
}

// tokenize splits a column name on whitespace, underscores and hyphens.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_' || r == '-'
	})
}

func sharedTokens(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	n := 0
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if set[t] && !seen[t] {
			n++
			seen[t] = true
		}
	}
	return n
}
