// Package classify implements the column classifiers that guess which
// uploaded scope-sheet column corresponds to each semantic field, using
// previously confirmed knowledge first and header/value heuristics second.
package classify

import (
	"sort"

	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// DefaultScoreFloor is the minimum keyword/pattern score a column must reach
// before a classifier accepts it as the field's detected column.
const DefaultScoreFloor = 50

// Knowledge is the lookup surface classifiers need from the knowledge base.
// A nil Knowledge disables the lookup and classifiers fall straight through
// to keyword scoring.
type Knowledge interface {
	FindMatch(columnName string, field model.FieldType) *model.Match
}

// Suggestion is one classifier's detected column for a field type, not yet
// confirmed by the user.
type Suggestion struct {
	Field      model.FieldType `json:"field"`
	ColumnName string          `json:"columnName"`
	Confidence float64         `json:"confidence"`
	Source     string          `json:"source"` // "knowledge" or "keyword"
	MatchType  model.MatchType `json:"matchType,omitempty"`
}

// NPICandidate is one column's combined NPI score in the ranked diagnostic
// view. Only the top candidate that clears the floor is flagged.
type NPICandidate struct {
	Name        string          `json:"name"`
	Confidence  float64         `json:"confidence"`
	IsNPIColumn bool            `json:"isNPIColumn"`
	MatchType   model.MatchType `json:"matchType,omitempty"`
}

// Detector runs the per-field classifiers over an uploaded column set.
type Detector struct {
	kb    Knowledge
	floor float64
}

// NewDetector creates a Detector. kb may be nil.
func NewDetector(kb Knowledge) *Detector {
	return &Detector{kb: kb, floor: DefaultScoreFloor}
}

// WithFloor overrides the keyword-score acceptance floor.
func (d *Detector) WithFloor(floor float64) *Detector {
	d.floor = floor
	return d
}

// Detect returns the best-matching column name for the given field, or ""
// when no column clears the acceptance bar. Knowledge-base matches win over
// keyword scores; ties break to the first-seen column.
func (d *Detector) Detect(field model.FieldType, columns []model.Column) string {
	if s := d.detect(field, columns); s != nil {
		return s.ColumnName
	}
	return ""
}

func (d *Detector) detect(field model.FieldType, columns []model.Column) *Suggestion {
	if len(columns) == 0 {
		return nil
	}

	// Knowledge base first: any accepted match beats keyword scoring.
	if d.kb != nil {
		var best *Suggestion
		for _, col := range columns {
			m := d.kb.FindMatch(col.Name, field)
			if m == nil {
				continue
			}
			if best == nil || m.Confidence > best.Confidence {
				best = &Suggestion{
					Field:      field,
					ColumnName: col.Name,
					Confidence: m.Confidence,
					Source:     "knowledge",
					MatchType:  m.MatchType,
				}
			}
		}
		if best != nil {
			return best
		}
	}

	spec, ok := fieldSpecs[field]
	if !ok {
		return nil
	}
	var best *Suggestion
	for _, col := range columns {
		score := spec.score(col)
		if score < d.floor {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &Suggestion{
				Field:      field,
				ColumnName: col.Name,
				Confidence: score,
				Source:     "keyword",
			}
		}
	}
	return best
}

// DetectAll runs every registered classifier and returns the accepted
// suggestions in field display order. Fields with no acceptable column are
// omitted. Cross-field exclusivity is deliberately not enforced here; only
// the mapping layer constrains NPI to a single column.
func (d *Detector) DetectAll(columns []model.Column) []Suggestion {
	var out []Suggestion
	for _, field := range model.AllFieldTypes() {
		if s := d.detect(field, columns); s != nil {
			out = append(out, *s)
		}
	}
	zap.L().Debug("classify: detection pass complete",
		zap.Int("columns", len(columns)),
		zap.Int("suggestions", len(out)),
	)
	return out
}

// DetectNPIRanked scores every column for NPI likelihood, folding stored
// knowledge into the pattern score, and returns all columns ranked by
// combined confidence. The top candidate is flagged when it clears the floor.
func (d *Detector) DetectNPIRanked(columns []model.Column) []NPICandidate {
	spec := fieldSpecs[model.FieldNPI]

	out := make([]NPICandidate, 0, len(columns))
	for _, col := range columns {
		c := NPICandidate{
			Name:       col.Name,
			Confidence: spec.score(col),
		}
		if d.kb != nil {
			if m := d.kb.FindMatch(col.Name, model.FieldNPI); m != nil {
				c.Confidence = clamp(c.Confidence+m.Confidence*0.5, 0, 100)
				c.MatchType = m.MatchType
			}
		}
		out = append(out, c)
	}

	// Stable: equal scores keep first-seen column order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > 0 && out[0].Confidence >= d.floor {
		out[0].IsNPIColumn = true
	}
	return out
}
