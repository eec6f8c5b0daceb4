package knowledge

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Export writes the full document to w in the given format ("json" or
// "yaml").
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	data, err := json.MarshalIndent(s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return eris.Wrap(err, "knowledge: marshal export")
	}

	switch format {
	case "", "json":
		_, err = w.Write(append(data, '\n'))
		return eris.Wrap(err, "knowledge: write export")
	case "yaml":
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return eris.Wrap(err, "knowledge: reshape export")
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return eris.Wrap(enc.Encode(generic), "knowledge: encode yaml")
	default:
		return eris.Errorf("knowledge: unknown export format %q", format)
	}
}

// Import replaces the store with a previously exported document. Malformed
// input (undecodable, or missing the required top-level shape) is rejected
// and the existing store is left untouched.
func (s *Store) Import(ctx context.Context, r io.Reader, format string) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return eris.Wrap(err, "knowledge: read import")
	}

	if format == "yaml" {
		var generic map[string]any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return eris.Wrap(err, "knowledge: decode yaml import")
		}
		raw, err = json.Marshal(generic)
		if err != nil {
			return eris.Wrap(err, "knowledge: reshape yaml import")
		}
	}

	doc := NewDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return eris.Wrap(err, "knowledge: import rejected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.persist(ctx)
	return nil
}
