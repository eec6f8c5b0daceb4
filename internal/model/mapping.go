package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Mapping is a confirmed, session-scoped association between one uploaded
// column and one or more field types. DetectedAs is semantically a set;
// insertion order is preserved for display.
type Mapping struct {
	ColumnName string      `json:"columnName"`
	DetectedAs []FieldType `json:"detectedAs"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// mappingJSON mirrors Mapping but leaves detectedAs raw so legacy records
// (a bare string instead of an array) can be normalized on read.
type mappingJSON struct {
	ColumnName string          `json:"columnName"`
	DetectedAs json.RawMessage `json:"detectedAs"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// UnmarshalJSON accepts both the current array form and the legacy
// single-string form of detectedAs.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var raw mappingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal mapping")
	}
	m.ColumnName = raw.ColumnName
	m.CreatedAt = raw.CreatedAt
	m.UpdatedAt = raw.UpdatedAt
	m.DetectedAs = nil

	if len(raw.DetectedAs) == 0 {
		return nil
	}
	var list []FieldType
	if err := json.Unmarshal(raw.DetectedAs, &list); err == nil {
		m.DetectedAs = list
		return nil
	}
	var single FieldType
	if err := json.Unmarshal(raw.DetectedAs, &single); err != nil {
		return eris.Wrap(err, "model: unmarshal mapping detectedAs")
	}
	if single != "" {
		m.DetectedAs = []FieldType{single}
	}
	return nil
}

// Has reports whether the mapping carries the given field type.
func (m *Mapping) Has(ft FieldType) bool {
	for _, d := range m.DetectedAs {
		if d == ft {
			return true
		}
	}
	return false
}

// Toggle adds ft to the mapping's set, or removes it if already present.
// Reports whether ft is present after the call.
func (m *Mapping) Toggle(ft FieldType) bool {
	for i, d := range m.DetectedAs {
		if d == ft {
			m.DetectedAs = append(m.DetectedAs[:i], m.DetectedAs[i+1:]...)
			return false
		}
	}
	m.DetectedAs = append(m.DetectedAs, ft)
	return true
}
