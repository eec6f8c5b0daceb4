package knowledge

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/model"
	"github.com/fluent-ops/flu3nt/internal/resilience"
)

// Store is the process-wide knowledge base: per-field entry buckets plus the
// session mapping list, loaded from a Backend and written back wholesale on
// every save. Reads degrade to the default empty document when the backend
// is unavailable; writes are best effort. The surrounding tool is a
// single-user session, so cross-process writers are last-writer-wins.
type Store struct {
	mu      sync.Mutex
	backend Backend
	fuzzy   classify.FuzzyConfig
	retry   resilience.RetryConfig
	doc     *Document
}

// NewStore creates a Store over the given backend with the given fuzzy-match
// constants. The document is loaded lazily on first use. Backend reads and
// writes are retried on transient failures before the store degrades.
func NewStore(backend Backend, fuzzy classify.FuzzyConfig) *Store {
	return &Store{
		backend: backend,
		fuzzy:   fuzzy,
		retry: resilience.RetryConfig{
			OnRetry: func(attempt int, err error) {
				zap.L().Warn("knowledge: backend retry", zap.Int("attempt", attempt), zap.Error(err))
			},
		},
	}
}

// Open eagerly loads the persisted document.
func (s *Store) Open(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
}

// ensureLoaded populates s.doc, falling back to the default shape on any
// backend or decode failure. Callers must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) {
	if s.doc != nil {
		return
	}
	data, err := resilience.DoVal(ctx, s.retry, s.backend.Load)
	if err != nil {
		zap.L().Warn("knowledge: load failed, starting empty", zap.Error(err))
		s.doc = NewDocument()
		return
	}
	if data == nil {
		s.doc = NewDocument()
		return
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		zap.L().Warn("knowledge: persisted document corrupt, starting empty", zap.Error(err))
		s.doc = NewDocument()
		return
	}
	s.doc = doc
}

// Get returns the full document, auto-initialized to the default empty shape
// when nothing is persisted. Callers mutating it must call Save afterwards.
func (s *Store) Get(ctx context.Context) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.doc
}

// Save stamps metadata.lastUpdated and overwrites the persisted document.
// Persistence failures are logged and swallowed; the in-memory document
// remains authoritative for the rest of the session.
func (s *Store) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	s.persist(ctx)
}

// persist writes the current document. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	now := time.Now().UTC()
	s.doc.Metadata.LastUpdated = &now

	data, err := json.Marshal(s.doc)
	if err != nil {
		zap.L().Error("knowledge: marshal document", zap.Error(err))
		return
	}
	err = resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.backend.Store(ctx, data)
	})
	if err != nil {
		zap.L().Warn("knowledge: persist failed, continuing in memory", zap.Error(err))
	}
}

// AddToKnowledge records a confirmed column name for the given field with
// confidence 100. A case-insensitive duplicate in the bucket is a no-op.
// Reports whether an insert occurred, so callers can report accurate
// "N columns saved" counts.
func (s *Store) AddToKnowledge(ctx context.Context, field model.FieldType, columnName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	if !s.addEntry(field, columnName) {
		return false
	}
	s.persist(ctx)
	return true
}

func (s *Store) addEntry(field model.FieldType, columnName string) bool {
	name := strings.TrimSpace(columnName)
	if name == "" || !field.Valid() {
		return false
	}
	if s.findEntry(field, name) != nil {
		return false
	}
	s.doc.Buckets[field] = append(s.doc.Buckets[field], model.Entry{
		Name:            name,
		Confidence:      100,
		DetectionCount:  1,
		FirstDetectedAt: time.Now().UTC(),
	})
	s.doc.Metadata.TotalDetections++
	return true
}

// AddNPIColumn records an NPI column detection. Unlike the other buckets a
// repeat detection updates in place: the detection count is incremented,
// confidence is raised only if the new value is higher, and lastDetectedAt
// is stamped.
func (s *Store) AddNPIColumn(ctx context.Context, columnName string, confidence int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	s.bumpNPI(columnName, confidence)
	s.persist(ctx)
}

// bumpNPI applies the NPI upsert and reports whether a new entry was
// inserted. Callers must hold s.mu.
func (s *Store) bumpNPI(columnName string, confidence int) bool {
	name := strings.TrimSpace(columnName)
	if name == "" {
		return false
	}
	now := time.Now().UTC()
	s.doc.Metadata.TotalDetections++

	if e := s.findEntry(model.FieldNPI, name); e != nil {
		e.DetectionCount++
		if confidence > e.Confidence {
			e.Confidence = confidence
		}
		e.LastDetectedAt = &now
		return false
	}
	s.doc.Buckets[model.FieldNPI] = append(s.doc.Buckets[model.FieldNPI], model.Entry{
		Name:            name,
		Confidence:      confidence,
		DetectionCount:  1,
		FirstDetectedAt: now,
		LastDetectedAt:  &now,
	})
	return true
}

func (s *Store) findEntry(field model.FieldType, name string) *model.Entry {
	bucket := s.doc.Buckets[field]
	for i := range bucket {
		if strings.EqualFold(bucket[i].Name, name) {
			return &bucket[i]
		}
	}
	return nil
}

// FindMatch runs the fuzzy-lookup algorithm for one column name against one
// field's bucket. Returns nil when nothing clears the acceptance bar.
// Implements classify.Knowledge.
func (s *Store) FindMatch(columnName string, field model.FieldType) *model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(context.Background())
	return classify.BestEntryMatch(s.doc.Buckets[field], columnName, s.fuzzy)
}

// FindNPIMatch is FindMatch against the NPI bucket.
func (s *Store) FindNPIMatch(columnName string) *model.Match {
	return s.FindMatch(columnName, model.FieldNPI)
}

// RemoveColumn deletes one entry (case-insensitive name match) from a
// field's bucket. Reports whether an entry was removed.
func (s *Store) RemoveColumn(ctx context.Context, columnName string, field model.FieldType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	bucket := s.doc.Buckets[field]
	for i := range bucket {
		if strings.EqualFold(bucket[i].Name, columnName) {
			s.doc.Buckets[field] = append(bucket[:i], bucket[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// Clear wipes the entire store back to the default empty shape. Irreversible;
// callers are expected to confirm with the user first.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = NewDocument()
	if err := s.backend.Reset(ctx); err != nil {
		zap.L().Warn("knowledge: backend reset failed", zap.Error(err))
		return err
	}
	return nil
}

// AllColumns returns every bucket keyed by its persisted bucket name, for
// the learning viewer panel. The returned slices are copies.
func (s *Store) AllColumns(ctx context.Context) map[string][]model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make(map[string][]model.Entry, len(s.doc.Buckets))
	for _, ft := range model.AllFieldTypes() {
		entries := make([]model.Entry, len(s.doc.Buckets[ft]))
		copy(entries, s.doc.Buckets[ft])
		out[ft.Bucket()] = entries
	}
	return out
}

// Stats summarizes the store for display. Purely derived, no side effects.
type Stats struct {
	TotalNPIColumns int           `json:"totalNPIColumns"`
	TotalDetections int           `json:"totalDetections"`
	LastUpdated     *time.Time    `json:"lastUpdated"`
	TopNPIColumns   []model.Entry `json:"topNPIColumns"`
}

// GetStats returns store counters and the five most-detected NPI columns.
func (s *Store) GetStats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	npi := make([]model.Entry, len(s.doc.Buckets[model.FieldNPI]))
	copy(npi, s.doc.Buckets[model.FieldNPI])
	sort.SliceStable(npi, func(i, j int) bool {
		return npi[i].DetectionCount > npi[j].DetectionCount
	})
	if len(npi) > 5 {
		npi = npi[:5]
	}

	return Stats{
		TotalNPIColumns: len(s.doc.Buckets[model.FieldNPI]),
		TotalDetections: s.doc.Metadata.TotalDetections,
		LastUpdated:     s.doc.Metadata.LastUpdated,
		TopNPIColumns:   npi,
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
