package records

import (
	"context"
	"fmt"

	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/google/uuid"
)

type PaymentRepository struct {
	store recordstore.Store
}

func NewPaymentRepository(store recordstore.Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func (r *PaymentRepository) GetByCardID(ctx context.Context, cardID string) ([]*payment.Payment, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []*payment.Payment
	for _, p := range all {
		if p.CardID == cardID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PaymentRepository) GetAll(ctx context.Context) ([]*payment.Payment, error) {
	rows, err := r.store.List(ctx, recordstore.Payments)
	if err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, 0, len(rows))
	for _, row := range rows {
		var p payment.Payment
		if err := row.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode payment %s: %w", row.ID, err)
		}
		payments = append(payments, &p)
	}
	return payments, nil
}

// Create assigns a fresh id and appends p.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	p.ID = uuid.NewString()

	m, err := recordstore.Put(recordstore.Payments, p.ID, p)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, m)
}
