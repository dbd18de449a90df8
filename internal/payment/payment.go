package payment

import (
	"sort"
	"time"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/core/money"
	"github.com/shopspring/decimal"
)

// Status is the payment status shared by cards and ledger entries.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var statuses = []Status{StatusPending, StatusCompleted, StatusFailed}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusNames lists the accepted status values in display order.
func StatusNames() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ParseStatus rejects anything outside the closed status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", errors.ErrInvalidPaymentStatus.WithDetails(errors.ValidationErrors{
			Errors: []errors.ValidationError{{
				Field:   "status",
				Message: "status must be one of: pending, completed, failed",
				Code:    string(errors.ErrCodeInvalidPaymentStatus),
			}},
		})
	}
	return s, nil
}

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Payment is an append-only ledger entry against a card.
type Payment struct {
	ID                 string             `json:"id"`
	CardID             string             `json:"cardId"`
	Amount             decimal.Decimal    `json:"amount"`
	PaymentDate        time.Time          `json:"paymentDate"`
	Status             Status             `json:"status"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationDate   *time.Time         `json:"verificationDate,omitempty"`
	VerifiedBy         *string            `json:"verifiedBy,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// NewPayment builds a completed, unverified entry paid at now. The
// repository assigns the id.
func NewPayment(cardID string, amount decimal.Decimal, notes *string, now time.Time) *Payment {
	return &Payment{
		CardID:             cardID,
		Amount:             amount,
		PaymentDate:        now,
		Status:             StatusCompleted,
		VerificationStatus: VerificationUnverified,
		Notes:              notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// SortByPaymentDateDesc orders newest first; ties fall back to id.
func SortByPaymentDateDesc(payments []*Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.PaymentDate.Equal(b.PaymentDate) {
			return a.PaymentDate.After(b.PaymentDate)
		}
		return a.ID < b.ID
	})
}

// History summarises the payments recorded for one card.
type History struct {
	CardID             string          `json:"cardId"`
	Count              int             `json:"count"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	TotalPaidFormatted string          `json:"totalPaidFormatted"`
	LastPaymentDate    *time.Time      `json:"lastPaymentDate,omitempty"`
	LastPaymentStatus  *Status         `json:"lastPaymentStatus,omitempty"`
}

// Summarize expects payments sorted newest first. Only completed entries
// count towards TotalPaid.
func Summarize(cardID string, payments []*Payment) History {
	h := History{CardID: cardID, Count: len(payments), TotalPaid: decimal.Zero}
	for _, p := range payments {
		if p.Status == StatusCompleted {
			h.TotalPaid = h.TotalPaid.Add(p.Amount)
		}
	}
	if len(payments) > 0 {
		last := payments[0]
		date := last.PaymentDate
		status := last.Status
		h.LastPaymentDate = &date
		h.LastPaymentStatus = &status
	}
	h.TotalPaidFormatted = money.Format(h.TotalPaid)
	return h
}
