package records

import (
	"context"
	stderrors "errors"
	"fmt"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/card"
	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/google/uuid"
)

type CardRepository struct {
	store recordstore.Store
}

func NewCardRepository(store recordstore.Store) *CardRepository {
	return &CardRepository{store: store}
}

func (r *CardRepository) GetAll(ctx context.Context) ([]*card.Card, error) {
	rows, err := r.store.List(ctx, recordstore.Cards)
	if err != nil {
		return nil, err
	}

	cards := make([]*card.Card, 0, len(rows))
	for _, row := range rows {
		var c card.Card
		if err := row.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode card %s: %w", row.ID, err)
		}
		cards = append(cards, &c)
	}
	return cards, nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*card.Card, error) {
	row, err := r.store.Get(ctx, recordstore.Cards, id)
	if err != nil {
		if stderrors.Is(err, recordstore.ErrNotFound) {
			return nil, errors.ErrCardNotFound
		}
		return nil, err
	}

	var c card.Card
	if err := row.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", id, err)
	}
	return &c, nil
}

func (r *CardRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if stderrors.Is(err, errors.ErrCardNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create assigns a fresh id and stores c.
func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	c.ID = uuid.NewString()

	m, err := recordstore.Put(recordstore.Cards, c.ID, c)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, m)
}

// Update replaces a stored card, keeping its original createdAt.
func (r *CardRepository) Update(ctx context.Context, c *card.Card) error {
	existing, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt

	m, err := recordstore.Put(recordstore.Cards, c.ID, c)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, m)
}

// Delete removes the card only; payments referencing it are kept.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.Apply(ctx, recordstore.Remove(recordstore.Cards, id))
}

func (r *CardRepository) SaveSettlement(ctx context.Context, c *card.Card, p *payment.Payment) error {
	mutations := make([]recordstore.Mutation, 0, 2)

	m, err := recordstore.Put(recordstore.Cards, c.ID, c)
	if err != nil {
		return err
	}
	mutations = append(mutations, m)

	if p != nil {
		p.ID = uuid.NewString()
		pm, err := recordstore.Put(recordstore.Payments, p.ID, p)
		if err != nil {
			return err
		}
		mutations = append(mutations, pm)
	}

	return r.store.Apply(ctx, mutations...)
}
