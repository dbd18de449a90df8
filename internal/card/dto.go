package card

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/core/common/validation"
	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/shopspring/decimal"
)

const maxNameLength = 100

// CardDTO is the body of POST /cards and PUT /cards/{id}.
type CardDTO struct {
	Name          *string          `json:"name"`
	StatementDate *int             `json:"statementDate"`
	DueDate       *int             `json:"dueDate"`
	CreditLimit   *decimal.Decimal `json:"creditLimit"`
	UsedAmount    *decimal.Decimal `json:"usedAmount,omitempty"`
	// PaymentStatus is honoured on create only.
	PaymentStatus *string `json:"paymentStatus,omitempty"`

	quoted map[string]bool
}

func (d *CardDTO) UnmarshalJSON(data []byte) error {
	type plain CardDTO
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	quoted, err := validation.QuotedFields(data, "creditLimit", "usedAmount")
	if err != nil {
		return err
	}
	d.quoted = quoted
	return nil
}

func (d *CardDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", d.Name).
		Required().
		MaxLength(maxNameLength)
	validator.Field("statementDate", d.StatementDate).
		Required().
		IntRange(1, 31, errors.ErrCodeInvalidDayOfMonth)
	validator.Field("dueDate", d.DueDate).
		Required().
		IntRange(1, 31, errors.ErrCodeInvalidDayOfMonth)
	validator.Field("creditLimit", d.CreditLimit).
		Required().
		JSONNumber(d.quoted, errors.ErrCodeInvalidAmount).
		NonNegative(errors.ErrCodeInvalidAmount)

	used := validator.Field("usedAmount", d.UsedAmount).
		JSONNumber(d.quoted, errors.ErrCodeInvalidAmount).
		NonNegative(errors.ErrCodeInvalidAmount)
	if d.CreditLimit != nil {
		used.NotGreaterThan(*d.CreditLimit, "creditLimit", errors.ErrCodeUsageExceedsLimit)
	}

	validator.Field("paymentStatus", d.PaymentStatus).
		OneOf(payment.StatusNames(), errors.ErrCodeInvalidPaymentStatus)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// StatusUpdateDTO is the body of PUT /cards/{id}/payment.
type StatusUpdateDTO struct {
	Status string `json:"status"`
}

type StatusUpdateResponse struct {
	CardID    string         `json:"cardId"`
	Status    payment.Status `json:"status"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
