package card

import (
	"time"

	"github.com/frahmantamala/cardtracker/internal/core/duedate"
	"github.com/frahmantamala/cardtracker/internal/core/money"
	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalCards       int              `json:"totalCards"`
	PendingCards     int              `json:"pendingCards"`
	CompletedCards   int              `json:"completedCards"`
	FailedCards      int              `json:"failedCards"`
	DueSoonCards     int              `json:"dueSoonCards"`
	OverdueCards     int              `json:"overdueCards"`
	TotalCreditLimit decimal.Decimal  `json:"totalCreditLimit"`
	AmountDue        decimal.Decimal  `json:"amountDue"`
	TotalDebt        decimal.Decimal  `json:"totalDebt"`
	RemainingCredit  decimal.Decimal  `json:"remainingCredit"`
	Currency         string           `json:"currency"`
	Formatted        FormattedSummary `json:"formatted"`
}

type FormattedSummary struct {
	TotalCreditLimit string `json:"totalCreditLimit"`
	AmountDue        string `json:"amountDue"`
	TotalDebt        string `json:"totalDebt"`
	RemainingCredit  string `json:"remainingCredit"`
}

// Summarize aggregates the portfolio. Amount due is the usage on pending
// cards; total debt is the usage on every card.
func Summarize(cards []*Card, today time.Time) Summary {
	s := Summary{
		TotalCards:       len(cards),
		TotalCreditLimit: decimal.Zero,
		AmountDue:        decimal.Zero,
		TotalDebt:        decimal.Zero,
		RemainingCredit:  decimal.Zero,
		Currency:         money.Code(),
	}

	for _, c := range cards {
		switch c.PaymentStatus {
		case payment.StatusPending:
			s.PendingCards++
			s.AmountDue = s.AmountDue.Add(c.UsedAmount)
		case payment.StatusCompleted:
			s.CompletedCards++
		case payment.StatusFailed:
			s.FailedCards++
		}

		if !c.IsPaid() {
			days := duedate.DaysUntil(c.DueDate, today)
			switch {
			case days <= 0:
				s.OverdueCards++
			case days <= duedate.SoonWindowDays:
				s.DueSoonCards++
			}
		}

		s.TotalCreditLimit = s.TotalCreditLimit.Add(c.CreditLimit)
		s.TotalDebt = s.TotalDebt.Add(c.UsedAmount)
		s.RemainingCredit = s.RemainingCredit.Add(c.RemainingAmount)
	}

	s.Formatted = FormattedSummary{
		TotalCreditLimit: money.Format(s.TotalCreditLimit),
		AmountDue:        money.Format(s.AmountDue),
		TotalDebt:        money.Format(s.TotalDebt),
		RemainingCredit:  money.Format(s.RemainingCredit),
	}
	return s
}
