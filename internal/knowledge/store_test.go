package knowledge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st := NewStore(NewMemory(), classify.DefaultFuzzyConfig())
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

// --- Get / Save ---

func TestStore_Get_AutoInitializes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	doc := st.Get(ctx)
	require.NotNil(t, doc)
	assert.Nil(t, doc.Metadata.LastUpdated)
	assert.Zero(t, doc.Metadata.TotalDetections)
	for _, ft := range model.AllFieldTypes() {
		assert.NotNil(t, doc.Bucket(ft))
		assert.Empty(t, doc.Bucket(ft))
	}
	assert.Empty(t, doc.Mappings)
}

func TestStore_Get_DegradesOnCorruptDocument(t *testing.T) {
	backend := NewMemory()
	require.NoError(t, backend.Store(context.Background(), []byte("{not json")))

	st := NewStore(backend, classify.DefaultFuzzyConfig())
	doc := st.Get(context.Background())
	require.NotNil(t, doc)
	assert.Empty(t, doc.Bucket(model.FieldNPI))
}

func TestStore_SaveRoundTrip(t *testing.T) {
	backend := NewMemory()
	ctx := context.Background()

	st := NewStore(backend, classify.DefaultFuzzyConfig())
	require.True(t, st.AddToKnowledge(ctx, model.FieldFirstName, "fname"))
	st.Save(ctx)

	// A second store over the same backend sees the same content.
	st2 := NewStore(backend, classify.DefaultFuzzyConfig())
	doc := st2.Get(ctx)
	require.Len(t, doc.Bucket(model.FieldFirstName), 1)
	assert.Equal(t, "fname", doc.Bucket(model.FieldFirstName)[0].Name)
	assert.Equal(t, 1, doc.Metadata.TotalDetections)
	assert.NotNil(t, doc.Metadata.LastUpdated)

	// Save(get()) is idempotent apart from lastUpdated.
	st2.Save(ctx)
	st3 := NewStore(backend, classify.DefaultFuzzyConfig())
	doc3 := st3.Get(ctx)
	doc3.Metadata.LastUpdated = doc.Metadata.LastUpdated
	a, err := json.Marshal(doc)
	require.NoError(t, err)
	b, err := json.Marshal(doc3)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

// --- AddToKnowledge ---

func TestStore_AddToKnowledge_Dedup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	assert.True(t, st.AddToKnowledge(ctx, model.FieldFirstName, "First Name"))
	assert.False(t, st.AddToKnowledge(ctx, model.FieldFirstName, "First Name"))
	assert.False(t, st.AddToKnowledge(ctx, model.FieldFirstName, "FIRST NAME"), "dedup is case-insensitive")

	bucket := st.Get(ctx).Bucket(model.FieldFirstName)
	require.Len(t, bucket, 1)
	assert.Equal(t, "First Name", bucket[0].Name)
	assert.Equal(t, 100, bucket[0].Confidence)
}

func TestStore_AddToKnowledge_RejectsInvalid(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	assert.False(t, st.AddToKnowledge(ctx, model.FieldFirstName, "   "))
	assert.False(t, st.AddToKnowledge(ctx, model.FieldType("bogus"), "col"))
}

func TestStore_AddToKnowledge_SameNameDifferentBuckets(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	assert.True(t, st.AddToKnowledge(ctx, model.FieldPracticeID, "ID"))
	assert.True(t, st.AddToKnowledge(ctx, model.FieldLocationID, "ID"), "uniqueness is per bucket")
}

// --- AddNPIColumn ---

func TestStore_AddNPIColumn_UpsertSemantics(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	st.AddNPIColumn(ctx, "Provider ID", 80)
	st.AddNPIColumn(ctx, "provider id", 60) // repeat detection, lower confidence

	bucket := st.Get(ctx).Bucket(model.FieldNPI)
	require.Len(t, bucket, 1)
	assert.Equal(t, "Provider ID", bucket[0].Name)
	assert.Equal(t, 2, bucket[0].DetectionCount)
	assert.Equal(t, 80, bucket[0].Confidence, "confidence is only raised, never lowered")
	assert.NotNil(t, bucket[0].LastDetectedAt)

	st.AddNPIColumn(ctx, "Provider ID", 95)
	bucket = st.Get(ctx).Bucket(model.FieldNPI)
	assert.Equal(t, 95, bucket[0].Confidence)
	assert.Equal(t, 3, bucket[0].DetectionCount)
	assert.Equal(t, 3, st.Get(ctx).Metadata.TotalDetections)
}

// --- FindMatch ---

func TestStore_FindMatch_Exact(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	st.AddToKnowledge(ctx, model.FieldFirstName, "fname")
	m := st.FindMatch("FNAME", model.FieldFirstName)
	require.NotNil(t, m)
	assert.Equal(t, model.MatchExact, m.MatchType)
	assert.Equal(t, 100.0, m.Confidence)
}

func TestStore_FindMatch_Fuzzy(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	st.AddToKnowledge(ctx, model.FieldFirstName, "fname")
	m := st.FindMatch("Provider_fname", model.FieldFirstName)
	require.NotNil(t, m)
	assert.Equal(t, model.MatchPartial, m.MatchType)
	assert.Equal(t, 50.0, m.Confidence)

	assert.Nil(t, st.FindMatch("Zip Code", model.FieldFirstName))
}

func TestStore_FindNPIMatch(t *testing.T) {
	st := newTestStore(t)
	st.AddNPIColumn(context.Background(), "NPI Number", 100)

	m := st.FindNPIMatch("npi number")
	require.NotNil(t, m)
	assert.Equal(t, model.MatchExact, m.MatchType)
	assert.Equal(t, 1, m.DetectionCount)
}

// --- RemoveColumn / Clear ---

func TestStore_RemoveColumn(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	st.AddToKnowledge(ctx, model.FieldCity, "City")
	assert.True(t, st.RemoveColumn(ctx, "CITY", model.FieldCity))
	assert.False(t, st.RemoveColumn(ctx, "City", model.FieldCity), "already removed")
	assert.Empty(t, st.Get(ctx).Bucket(model.FieldCity))
}

func TestStore_Clear(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	st.AddNPIColumn(ctx, "Provider ID", 100)
	st.AddToKnowledge(ctx, model.FieldCity, "City")
	st.SaveMapping(ctx, "Provider ID", model.FieldNPI)

	require.NoError(t, st.Clear(ctx))

	all := st.AllColumns(ctx)
	for bucket, entries := range all {
		assert.Empty(t, entries, "bucket %s should be empty", bucket)
	}
	stats := st.GetStats(ctx)
	assert.Zero(t, stats.TotalDetections)
	assert.Zero(t, stats.TotalNPIColumns)
	assert.Empty(t, st.GetMappings(ctx))
}

// --- Stats / AllColumns ---

func TestStore_GetStats_TopNPIColumns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"A", "B", "C", "D", "E", "F"} {
		for j := 0; j <= i; j++ {
			st.AddNPIColumn(ctx, name, 90)
		}
	}

	stats := st.GetStats(ctx)
	assert.Equal(t, 6, stats.TotalNPIColumns)
	require.Len(t, stats.TopNPIColumns, 5)
	assert.Equal(t, "F", stats.TopNPIColumns[0].Name)
	assert.Equal(t, 6, stats.TopNPIColumns[0].DetectionCount)
	assert.Equal(t, "B", stats.TopNPIColumns[4].Name)
}

func TestStore_AllColumns_CoversEveryBucket(t *testing.T) {
	st := newTestStore(t)
	all := st.AllColumns(context.Background())
	assert.Len(t, all, 21)
	assert.Contains(t, all, "npiColumns")
	assert.Contains(t, all, "firstNameColumns")
}
