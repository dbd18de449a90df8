package card

import (
	"time"

	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/shopspring/decimal"
)

// Settlement is the outcome of moving a card to a new payment status.
type Settlement struct {
	Card *Card
	// Payment is the ledger entry to append, if any.
	Payment *payment.Payment
	// Changed is false when the card already had the requested status;
	// nothing must be written in that case.
	Changed bool
}

// Reconcile computes the card state after a payment status change without
// mutating c.
//
// Completing a card settles its usage: a payment for the used amount is
// recorded, usage drops to zero and the full limit becomes available. A
// card with nothing used completes without a ledger entry. Other statuses
// only change the status.
func Reconcile(c *Card, status payment.Status, now time.Time) Settlement {
	if c.PaymentStatus == status {
		return Settlement{Card: c}
	}

	updated := *c
	updated.PaymentStatus = status
	updated.UpdatedAt = now

	var entry *payment.Payment
	if status == payment.StatusCompleted {
		if c.UsedAmount.IsPositive() {
			entry = payment.NewPayment(c.ID, c.UsedAmount, nil, now)
		}
		updated.UsedAmount = decimal.Zero
		updated.recompute()
	}

	return Settlement{Card: &updated, Payment: entry, Changed: true}
}
