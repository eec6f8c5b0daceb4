package classify

import (
	"strings"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// keywordScore pairs a header keyword with the confidence it awards when the
// keyword appears (case-insensitively) in a column header.
type keywordScore struct {
	keyword string
	score   float64
}

// fieldSpec is the per-field classifier configuration: a keyword table scored
// against the header, plus an optional scorer over the column's sample
// values. Adding a new field type is a pure data change here.
type fieldSpec struct {
	field    model.FieldType
	keywords []keywordScore
	examples func([]string) float64
}

var fieldSpecs = map[model.FieldType]fieldSpec{
	model.FieldNPI: {
		field: model.FieldNPI,
		// Header containing "npi" is only a baseline; the example values
		// carry most of the signal.
		keywords: []keywordScore{{"npi", 30}},
		examples: npiExampleScore,
	},
	model.FieldFirstName: {
		field: model.FieldFirstName,
		keywords: []keywordScore{
			{"first name", 100}, {"firstname", 100}, {"first_name", 100},
			{"given name", 95}, {"first", 90}, {"given", 90}, {"fname", 85},
		},
	},
	model.FieldLastName: {
		field: model.FieldLastName,
		keywords: []keywordScore{
			{"last name", 100}, {"lastname", 100}, {"last_name", 100},
			{"surname", 95}, {"family name", 90}, {"last", 90}, {"lname", 85},
		},
	},
	model.FieldGender: {
		field:    model.FieldGender,
		keywords: []keywordScore{{"gender", 100}, {"sex", 90}},
	},
	model.FieldProfessionalSuffix: {
		field: model.FieldProfessionalSuffix,
		keywords: []keywordScore{
			{"professional suffix", 100}, {"suffix", 90},
			{"credentials", 85}, {"credential", 85}, {"degree", 80},
		},
	},
	model.FieldHeadshot: {
		field: model.FieldHeadshot,
		keywords: []keywordScore{
			{"headshot", 100}, {"photo", 90}, {"picture", 85},
			{"image", 80}, {"avatar", 80},
		},
	},
	model.FieldAdditionalLanguages: {
		field: model.FieldAdditionalLanguages,
		keywords: []keywordScore{
			{"additional languages", 100}, {"languages spoken", 100},
			{"languages", 95}, {"language", 90},
		},
	},
	model.FieldPatientsAccepted: {
		field: model.FieldPatientsAccepted,
		keywords: []keywordScore{
			{"patients accepted", 100}, {"accepting new patients", 95},
			{"accepting patients", 95}, {"new patients", 90}, {"accepting", 80},
		},
	},
	model.FieldSpecialty: {
		field: model.FieldSpecialty,
		keywords: []keywordScore{
			{"specialty", 100}, {"speciality", 95}, {"specialties", 95},
			{"taxonomy", 80},
		},
	},
	model.FieldLocationID: {
		field: model.FieldLocationID,
		keywords: []keywordScore{
			{"location id", 100}, {"location_id", 100}, {"locationid", 100},
			{"loc id", 85},
		},
	},
	model.FieldLocationName: {
		field: model.FieldLocationName,
		keywords: []keywordScore{
			{"location name", 100}, {"office name", 85}, {"clinic name", 85},
			{"facility", 80}, {"location", 75},
		},
	},
	model.FieldLocationTypeRaw: {
		field: model.FieldLocationTypeRaw,
		keywords: []keywordScore{
			{"location type", 100}, {"facility type", 90},
			{"place of service", 85},
		},
	},
	model.FieldPracticeID: {
		field: model.FieldPracticeID,
		keywords: []keywordScore{
			{"practice id", 100}, {"practice_id", 100}, {"practiceid", 100},
			{"group id", 80},
		},
	},
	model.FieldPracticeCloudID: {
		field: model.FieldPracticeCloudID,
		keywords: []keywordScore{
			{"practice cloud id", 100}, {"practice cloud", 95}, {"cloud id", 90},
		},
	},
	model.FieldPracticeName: {
		field: model.FieldPracticeName,
		keywords: []keywordScore{
			{"practice name", 100}, {"group name", 85}, {"organization", 80},
			{"organisation", 80}, {"employer", 75},
		},
	},
	model.FieldAddressLine1: {
		field: model.FieldAddressLine1,
		keywords: []keywordScore{
			{"address line 1", 100}, {"address1", 95}, {"address 1", 95},
			{"street address", 90}, {"street", 80}, {"address", 75},
		},
	},
	model.FieldAddressLine2: {
		field: model.FieldAddressLine2,
		keywords: []keywordScore{
			{"address line 2", 100}, {"address2", 95}, {"address 2", 95},
			{"suite", 80}, {"unit", 75},
		},
	},
	model.FieldCity: {
		field:    model.FieldCity,
		keywords: []keywordScore{{"city", 100}, {"town", 85}},
	},
	model.FieldState: {
		field:    model.FieldState,
		keywords: []keywordScore{{"state", 100}, {"province", 85}},
	},
	model.FieldZip: {
		field: model.FieldZip,
		keywords: []keywordScore{
			{"zip code", 100}, {"zipcode", 100}, {"zip", 100},
			{"postal code", 95}, {"postal", 95},
		},
	},
	model.FieldPFS: {
		field: model.FieldPFS,
		keywords: []keywordScore{
			{"pfs", 100}, {"fee schedule", 90}, {"physician fee", 85},
		},
	},
}

// headerScore returns the best keyword score for a column header, 0 when no
// keyword matches.
func (fs fieldSpec) headerScore(name string) float64 {
	header := strings.ToLower(strings.TrimSpace(name))
	if header == "" {
		return 0
	}
	var best float64
	for _, kw := range fs.keywords {
		if strings.Contains(header, kw.keyword) && kw.score > best {
			best = kw.score
		}
	}
	return best
}

// score combines the header keyword score with the example-value score,
// clamped to [0, 100]. Columns with no examples simply contribute no value
// signal.
func (fs fieldSpec) score(col model.Column) float64 {
	s := fs.headerScore(col.Name)
	if fs.examples != nil {
		s += fs.examples(col.Examples)
	}
	return clamp(s, 0, 100)
}

// NPI example scoring: exact 10-digit values are strong evidence, 10 digits
// with incidental formatting weaker, numeric values of the wrong length count
// against, anything with letters or symbols counts strongly against.
const (
	npiExactValueScore     = 70
	npiFormattedValueScore = 50
	npiWrongLengthPenalty  = -20
	npiNonNumericPenalty   = -40
)

func npiExampleScore(examples []string) float64 {
	var s float64
	for _, raw := range examples {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		switch {
		case isDigits(v) && len(v) == 10:
			s += npiExactValueScore
		case isFormattedDigits(v):
			s += npiFormattedValueScore
		case isDigits(stripFormatting(v)):
			s += npiWrongLengthPenalty
		default:
			s += npiNonNumericPenalty
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isFormattedDigits reports whether s is exactly 10 digits once spaces and
// dashes are removed, and contains nothing but digits, spaces and dashes.
func isFormattedDigits(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != ' ' && r != '-' {
			return false
		}
	}
	stripped := stripFormatting(s)
	return isDigits(stripped) && len(stripped) == 10
}

func stripFormatting(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
