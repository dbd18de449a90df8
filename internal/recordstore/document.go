package recordstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// document is the whole-store JSON shape shared by the file and JSONBin
// backends: {"cards": [...], "payments": [...]}.
type document map[Collection][]json.RawMessage

func newDocument() document {
	doc := make(document, len(Collections))
	for _, c := range Collections {
		doc[c] = []json.RawMessage{}
	}
	return doc
}

// decodeDocument accepts an empty payload, the two-collection object, or a
// bare array which is read as the cards collection.
func decodeDocument(data []byte) (document, error) {
	doc := newDocument()
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return doc, nil
	}

	if data[0] == '[' {
		var cards []json.RawMessage
		if err := json.Unmarshal(data, &cards); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		doc[Cards] = cards
		return doc, nil
	}

	var raw map[Collection][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for _, c := range Collections {
		if items, ok := raw[c]; ok && items != nil {
			doc[c] = items
		}
	}
	return doc, nil
}

func (d document) encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func (d document) records(c Collection) ([]Record, error) {
	items := d[c]
	out := make([]Record, 0, len(items))
	for _, item := range items {
		id, err := recordID(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		out = append(out, Record{ID: id, Data: item})
	}
	return out, nil
}

func (d document) get(c Collection, id string) (Record, error) {
	records, err := d.records(c)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// apply mutates d in place. Puts replace an existing entry at its position
// or append; deletes of missing ids are ignored.
func (d document) apply(mutations []Mutation) error {
	for _, m := range mutations {
		items := d[m.Collection]
		idx := -1
		for i, item := range items {
			id, err := recordID(item)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Collection, err)
			}
			if id == m.ID {
				idx = i
				break
			}
		}

		switch {
		case m.Delete && idx >= 0:
			items = append(items[:idx:idx], items[idx+1:]...)
		case m.Delete:
		case idx >= 0:
			items[idx] = m.Data
		default:
			items = append(items, m.Data)
		}
		d[m.Collection] = items
	}
	return nil
}

func (d document) clone() document {
	cp := make(document, len(d))
	for c, items := range d {
		cp[c] = append([]json.RawMessage(nil), items...)
	}
	return cp
}

func recordID(item json.RawMessage) (string, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return "", fmt.Errorf("decode record id: %w", err)
	}
	if head.ID == "" {
		return "", fmt.Errorf("record without id")
	}
	return head.ID, nil
}
