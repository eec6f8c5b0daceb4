package knowledge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// SaveResult reports the outcome of a SaveMapping call. A rejected save is a
// value, not an error: Conflict carries the user-facing message naming the
// column that already holds NPI.
type SaveResult struct {
	Saved    bool   `json:"saved"`
	Conflict string `json:"conflict,omitempty"`
}

// GetMappings returns the current session's mappings. Records are normalized
// at the store boundary (legacy single-value detectedAs becomes a one-element
// set), so callers always see the set representation.
func (s *Store) GetMappings(ctx context.Context) []model.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make([]model.Mapping, len(s.doc.Mappings))
	copy(out, s.doc.Mappings)
	for i := range out {
		if out[i].DetectedAs == nil {
			out[i].DetectedAs = []model.FieldType{}
		}
	}
	return out
}

// SaveMapping toggles fieldType on the mapping for columnName, creating the
// mapping if absent and deleting it when its field-type set becomes empty.
// Assigning NPI is rejected when a different column already carries it: the
// store leaves all mappings untouched and returns the conflicting column in
// the result. This is the sole hard invariant enforced at this layer.
func (s *Store) SaveMapping(ctx context.Context, columnName string, fieldType model.FieldType) SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	if fieldType == model.FieldNPI {
		for i := range s.doc.Mappings {
			m := &s.doc.Mappings[i]
			if m.ColumnName != columnName && m.Has(model.FieldNPI) {
				zap.L().Info("knowledge: npi mapping rejected",
					zap.String("column", columnName),
					zap.String("holder", m.ColumnName),
				)
				return SaveResult{
					Conflict: fmt.Sprintf("NPI is already mapped to column %q; remove that mapping first", m.ColumnName),
				}
			}
		}
	}

	now := time.Now().UTC()
	for i := range s.doc.Mappings {
		m := &s.doc.Mappings[i]
		if m.ColumnName != columnName {
			continue
		}
		m.Toggle(fieldType)
		if len(m.DetectedAs) == 0 {
			s.doc.Mappings = append(s.doc.Mappings[:i], s.doc.Mappings[i+1:]...)
		} else {
			m.UpdatedAt = now
		}
		s.persist(ctx)
		return SaveResult{Saved: true}
	}

	s.doc.Mappings = append(s.doc.Mappings, model.Mapping{
		ColumnName: columnName,
		DetectedAs: []model.FieldType{fieldType},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	s.persist(ctx)
	return SaveResult{Saved: true}
}

// RemoveMapping deletes the mapping for columnName wholesale, whatever field
// types it held. Reports whether a mapping was removed.
func (s *Store) RemoveMapping(ctx context.Context, columnName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for i := range s.doc.Mappings {
		if s.doc.Mappings[i].ColumnName == columnName {
			s.doc.Mappings = append(s.doc.Mappings[:i], s.doc.Mappings[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// ClearMappings drops the session mapping list, leaving the knowledge
// buckets intact. Called on reset / new upload.
func (s *Store) ClearMappings(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	s.doc.Mappings = []model.Mapping{}
	s.persist(ctx)
}

// SaveMappingsToKnowledge projects the current mappings into knowledge
// entries without deleting the mappings. NPI roles go through the NPI upsert
// at confidence 100; every other role is a dedup-guarded insert. Returns the
// number of new entries created.
func (s *Store) SaveMappingsToKnowledge(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	saved := 0
	for _, m := range s.doc.Mappings {
		for _, ft := range m.DetectedAs {
			if ft == model.FieldNPI {
				if s.bumpNPI(m.ColumnName, 100) {
					saved++
				}
				continue
			}
			if s.addEntry(ft, m.ColumnName) {
				saved++
			}
		}
	}
	if saved > 0 {
		zap.L().Info("knowledge: mappings saved", zap.Int("new_entries", saved))
	}
	s.persist(ctx)
	return saved
}
