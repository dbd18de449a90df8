package card

import (
	"strings"
	"time"

	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/shopspring/decimal"
)

type Card struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	StatementDate   int             `json:"statementDate"`
	DueDate         int             `json:"dueDate"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	UsedAmount      decimal.Decimal `json:"usedAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PaymentStatus   payment.Status  `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewCard builds a card from a validated DTO. The repository assigns the id.
func NewCard(dto CardDTO, now time.Time) *Card {
	c := &Card{
		PaymentStatus: payment.StatusPending,
		CreatedAt:     now,
	}
	if dto.PaymentStatus != nil {
		c.PaymentStatus = payment.Status(*dto.PaymentStatus)
	}
	c.apply(dto, now)
	return c
}

// Replace overwrites the editable fields. Payment status only changes
// through reconciliation, so it is left alone.
func (c *Card) Replace(dto CardDTO, now time.Time) {
	c.apply(dto, now)
}

func (c *Card) apply(dto CardDTO, now time.Time) {
	c.Name = strings.TrimSpace(*dto.Name)
	c.StatementDate = *dto.StatementDate
	c.DueDate = *dto.DueDate
	c.CreditLimit = *dto.CreditLimit
	c.UsedAmount = decimal.Zero
	if dto.UsedAmount != nil {
		c.UsedAmount = *dto.UsedAmount
	}
	c.recompute()
	c.UpdatedAt = now
}

func (c *Card) recompute() {
	c.RemainingAmount = c.CreditLimit.Sub(c.UsedAmount)
}

func (c *Card) IsPaid() bool {
	return c.PaymentStatus == payment.StatusCompleted
}
