// Package knowledge implements the persistent column-mapping knowledge base:
// one JSON document of per-field entry buckets, the current session's
// mappings, and bookkeeping metadata, behind a pluggable storage backend.
package knowledge

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// Metadata is the document's bookkeeping block.
type Metadata struct {
	LastUpdated     *time.Time `json:"lastUpdated"`
	TotalDetections int        `json:"totalDetections"`
}

// Document is the full persisted knowledge base: one entry bucket per field
// type, the session mapping list, and metadata. On disk the buckets are
// flattened to top-level keys ("npiColumns", "firstNameColumns", ...); a
// missing bucket reads as empty, so adding a field type is additive.
type Document struct {
	Buckets  map[model.FieldType][]model.Entry
	Mappings []model.Mapping
	Metadata Metadata
}

// NewDocument returns the default empty document shape.
func NewDocument() *Document {
	buckets := make(map[model.FieldType][]model.Entry, len(model.AllFieldTypes()))
	for _, ft := range model.AllFieldTypes() {
		buckets[ft] = []model.Entry{}
	}
	return &Document{
		Buckets:  buckets,
		Mappings: []model.Mapping{},
		Metadata: Metadata{},
	}
}

// Bucket returns the entry list for a field type, empty when absent.
func (d *Document) Bucket(ft model.FieldType) []model.Entry {
	return d.Buckets[ft]
}

// MarshalJSON flattens the buckets to top-level keys alongside "mappings"
// and "metadata".
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Buckets)+2)
	for _, ft := range model.AllFieldTypes() {
		entries := d.Buckets[ft]
		if entries == nil {
			entries = []model.Entry{}
		}
		out[ft.Bucket()] = entries
	}
	mappings := d.Mappings
	if mappings == nil {
		mappings = []model.Mapping{}
	}
	out["mappings"] = mappings
	out["metadata"] = d.Metadata
	return json.Marshal(out)
}

// UnmarshalJSON reads the flattened document layout. The top-level object
// must carry a "metadata" key; anything else is rejected as malformed so a
// bad import cannot clobber an existing store.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "knowledge: unmarshal document")
	}
	metaRaw, ok := raw["metadata"]
	if !ok {
		return eris.New("knowledge: document missing metadata")
	}

	fresh := NewDocument()
	if err := json.Unmarshal(metaRaw, &fresh.Metadata); err != nil {
		return eris.Wrap(err, "knowledge: unmarshal metadata")
	}
	if mRaw, ok := raw["mappings"]; ok {
		if err := json.Unmarshal(mRaw, &fresh.Mappings); err != nil {
			return eris.Wrap(err, "knowledge: unmarshal mappings")
		}
	}
	for _, ft := range model.AllFieldTypes() {
		bRaw, ok := raw[ft.Bucket()]
		if !ok {
			continue
		}
		var entries []model.Entry
		if err := json.Unmarshal(bRaw, &entries); err != nil {
			return eris.Wrapf(err, "knowledge: unmarshal bucket %s", ft.Bucket())
		}
		if entries == nil {
			entries = []model.Entry{}
		}
		fresh.Buckets[ft] = entries
	}

	*d = *fresh
	return nil
}
