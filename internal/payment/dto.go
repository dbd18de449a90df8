package payment

import (
	"encoding/json"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// CreatePaymentDTO is the body of POST /cards/{id}/payments.
type CreatePaymentDTO struct {
	Amount *decimal.Decimal `json:"amount"`
	Notes  *string          `json:"notes,omitempty"`

	quoted map[string]bool
}

func (d *CreatePaymentDTO) UnmarshalJSON(data []byte) error {
	type plain CreatePaymentDTO
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	quoted, err := validation.QuotedFields(data, "amount")
	if err != nil {
		return err
	}
	d.quoted = quoted
	return nil
}

func (d *CreatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount", d.Amount).
		Required().
		JSONNumber(d.quoted, errors.ErrCodeInvalidAmount).
		Positive(errors.ErrCodeInvalidAmount)
	validator.Field("notes", d.Notes).
		MaxLength(500)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
