package gedcom

import (
	"encoding/json"
	"fmt"
)

// documentJSON is the cache serialization shape of a Document.
// The lookup indexes are rebuilt on decode.
type documentJSON struct {
	Individuals []*Individual `json:"individuals"`
	Families    []*Family     `json:"families"`
}

// MarshalDocument converts a decoded document to JSON bytes for
// caching. UnmarshalDocument restores an equivalent document.
func MarshalDocument(d *Document) ([]byte, error) {
	data, err := json.Marshal(documentJSON{
		Individuals: d.Individuals,
		Families:    d.Families,
	})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes JSON produced by MarshalDocument and
// rebuilds the document's lookup indexes.
func UnmarshalDocument(data []byte) (*Document, error) {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return newDocument(raw.Individuals, raw.Families)
}
