// Package recordstore persists the tracker's cards and payments as JSON
// records grouped in named collections.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Collection string

const (
	Cards    Collection = "cards"
	Payments Collection = "payments"
)

var Collections = []Collection{Cards, Payments}

var ErrNotFound = errors.New("record not found")

type Record struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Mutation is a single put or delete. A batch of mutations passed to
// Store.Apply is committed all together or not at all.
type Mutation struct {
	Collection Collection
	ID         string
	Data       json.RawMessage
	Delete     bool
}

// Put builds an upsert of v under id.
func Put(c Collection, id string, v any) (Mutation, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Mutation{}, fmt.Errorf("encode %s/%s: %w", c, id, err)
	}
	return Mutation{Collection: c, ID: id, Data: data}, nil
}

func Remove(c Collection, id string) Mutation {
	return Mutation{Collection: c, ID: id, Delete: true}
}

type Store interface {
	List(ctx context.Context, c Collection) ([]Record, error)
	// Get returns ErrNotFound when no record has id.
	Get(ctx context.Context, c Collection, id string) (Record, error)
	Apply(ctx context.Context, mutations ...Mutation) error
	Ping(ctx context.Context) error
	Close() error
}

func validate(mutations []Mutation) error {
	for _, m := range mutations {
		if m.ID == "" {
			return fmt.Errorf("mutation on %s: empty id", m.Collection)
		}
		if !knownCollection(m.Collection) {
			return fmt.Errorf("mutation on unknown collection %q", m.Collection)
		}
		if !m.Delete && !json.Valid(m.Data) {
			return fmt.Errorf("mutation on %s/%s: invalid JSON payload", m.Collection, m.ID)
		}
	}
	return nil
}

func knownCollection(c Collection) bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}
