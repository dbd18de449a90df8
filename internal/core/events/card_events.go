package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeCardPaymentCompleted = "card.payment_completed"
	EventTypePaymentRecorded      = "payment.recorded"
	EventTypeCardDueReminder      = "card.due_reminder"
)

type CardPaymentCompletedEvent struct {
	BaseEvent
	CardID    string          `json:"cardId"`
	CardName  string          `json:"cardName"`
	PaymentID string          `json:"paymentId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewCardPaymentCompletedEvent(cardID, cardName, paymentID string, amount decimal.Decimal, at time.Time) *CardPaymentCompletedEvent {
	return &CardPaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCardPaymentCompleted,
			Timestamp: at,
			Data: map[string]interface{}{
				"card_id":    cardID,
				"card_name":  cardName,
				"payment_id": paymentID,
				"amount":     amount.String(),
			},
		},
		CardID:    cardID,
		CardName:  cardName,
		PaymentID: paymentID,
		Amount:    amount,
	}
}

type PaymentRecordedEvent struct {
	BaseEvent
	PaymentID string          `json:"paymentId"`
	CardID    string          `json:"cardId"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewPaymentRecordedEvent(paymentID, cardID string, amount decimal.Decimal, at time.Time) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentRecorded,
			Timestamp: at,
			Data: map[string]interface{}{
				"payment_id": paymentID,
				"card_id":    cardID,
				"amount":     amount.String(),
			},
		},
		PaymentID: paymentID,
		CardID:    cardID,
		Amount:    amount,
	}
}

type CardDueReminderEvent struct {
	BaseEvent
	CardID       string          `json:"cardId"`
	CardName     string          `json:"cardName"`
	DaysUntilDue int             `json:"daysUntilDue"`
	DueDate      time.Time       `json:"dueDate"`
	AmountDue    decimal.Decimal `json:"amountDue"`
}

func NewCardDueReminderEvent(cardID, cardName string, daysUntilDue int, dueDate time.Time, amountDue decimal.Decimal, at time.Time) *CardDueReminderEvent {
	return &CardDueReminderEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCardDueReminder,
			Timestamp: at,
			Data: map[string]interface{}{
				"card_id":        cardID,
				"card_name":      cardName,
				"days_until_due": daysUntilDue,
				"due_date":       dueDate.Format("2006-01-02"),
				"amount_due":     amountDue.String(),
			},
		},
		CardID:       cardID,
		CardName:     cardName,
		DaysUntilDue: daysUntilDue,
		DueDate:      dueDate,
		AmountDue:    amountDue,
	}
}
