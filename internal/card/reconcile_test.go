package card_test

import (
	"time"

	"github.com/frahmantamala/cardtracker/internal/card"
	"github.com/frahmantamala/cardtracker/internal/payment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func pendingCard(id, name string, due int, limit, used int64) *card.Card {
	c := card.NewCard(card.CardDTO{
		Name:          ptr(name),
		StatementDate: ptr(1),
		DueDate:       ptr(due),
		CreditLimit:   amount(limit),
		UsedAmount:    amount(used),
	}, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	c.ID = id
	return c
}

var _ = Describe("Reconcile", func() {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	It("does not mutate the input card", func() {
		c := pendingCard("c1", "Visa", 25, 1000, 400)
		s := card.Reconcile(c, payment.StatusCompleted, now)

		Expect(s.Changed).To(BeTrue())
		Expect(c.PaymentStatus).To(Equal(payment.StatusPending))
		Expect(c.UsedAmount.String()).To(Equal("400"))
		Expect(s.Card).NotTo(BeIdenticalTo(c))
	})

	It("settles usage on completion", func() {
		c := pendingCard("c1", "Visa", 25, 1000, 400)
		s := card.Reconcile(c, payment.StatusCompleted, now)

		Expect(s.Card.UsedAmount.IsZero()).To(BeTrue())
		Expect(s.Card.RemainingAmount.String()).To(Equal("1000"))
		Expect(s.Card.UpdatedAt).To(Equal(now))
		Expect(s.Payment).NotTo(BeNil())
		Expect(s.Payment.CardID).To(Equal("c1"))
		Expect(s.Payment.Amount.Equal(decimal.NewFromInt(400))).To(BeTrue())
		Expect(s.Payment.PaymentDate).To(Equal(now))
	})

	It("reports no change for the current status", func() {
		c := pendingCard("c1", "Visa", 25, 1000, 400)
		s := card.Reconcile(c, payment.StatusPending, now)

		Expect(s.Changed).To(BeFalse())
		Expect(s.Payment).To(BeNil())
		Expect(s.Card.UpdatedAt).NotTo(Equal(now))
	})

	It("keeps balances when moving back to pending", func() {
		c := pendingCard("c1", "Visa", 25, 1000, 0)
		c.PaymentStatus = payment.StatusCompleted
		s := card.Reconcile(c, payment.StatusPending, now)

		Expect(s.Changed).To(BeTrue())
		Expect(s.Payment).To(BeNil())
		Expect(s.Card.PaymentStatus).To(Equal(payment.StatusPending))
		Expect(s.Card.RemainingAmount.String()).To(Equal("1000"))
	})
})

var _ = Describe("SortByDueDate", func() {
	today := time.Date(2025, time.February, 20, 15, 0, 0, 0, time.UTC)

	It("clamps a day 31 due date into February", func() {
		views := card.SortByDueDate([]*card.Card{pendingCard("c1", "Visa", 31, 100, 0)}, today)

		Expect(views[0].NextDueDate).To(Equal("2025-02-28"))
		Expect(views[0].DaysUntilDue).To(Equal(8))
		Expect(views[0].DueLabel).To(Equal("8 days remaining"))
	})

	It("labels the due day itself as overdue", func() {
		views := card.SortByDueDate([]*card.Card{pendingCard("c1", "Visa", 20, 100, 0)}, today)
		Expect(views[0].DaysUntilDue).To(Equal(0))
		Expect(views[0].DueLabel).To(Equal("overdue"))
	})

	It("breaks ties by name then id", func() {
		views := card.SortByDueDate([]*card.Card{
			pendingCard("b", "Beta", 25, 100, 0),
			pendingCard("z", "Alpha", 25, 100, 0),
			pendingCard("a", "Alpha", 25, 100, 0),
		}, today)

		ids := []string{views[0].ID, views[1].ID, views[2].ID}
		Expect(ids).To(Equal([]string{"a", "z", "b"}))
		Expect(views[0].DueLabel).To(Equal("due soon"))
	})
})

var _ = Describe("Summarize", func() {
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	It("is zero for no cards", func() {
		s := card.Summarize(nil, today)
		Expect(s.TotalCards).To(BeZero())
		Expect(s.AmountDue.IsZero()).To(BeTrue())
		Expect(s.Currency).To(Equal("VND"))
	})

	It("counts statuses and due windows", func() {
		paid := pendingCard("p", "Paid", 12, 3000, 0)
		paid.PaymentStatus = payment.StatusCompleted
		failed := pendingCard("f", "Failed", 28, 2000, 500)
		failed.PaymentStatus = payment.StatusFailed

		s := card.Summarize([]*card.Card{
			pendingCard("o", "Overdue", 10, 1000, 200),
			pendingCard("s", "Soon", 14, 1000, 300),
			paid,
			failed,
		}, today)

		Expect(s.TotalCards).To(Equal(4))
		Expect(s.PendingCards).To(Equal(2))
		Expect(s.CompletedCards).To(Equal(1))
		Expect(s.FailedCards).To(Equal(1))
		Expect(s.OverdueCards).To(Equal(1))
		Expect(s.DueSoonCards).To(Equal(1))
		Expect(s.AmountDue.String()).To(Equal("500"))
		Expect(s.TotalDebt.String()).To(Equal("1000"))
		Expect(s.TotalCreditLimit.String()).To(Equal("7000"))
		Expect(s.RemainingCredit.String()).To(Equal("6000"))
		Expect(s.Formatted.AmountDue).To(HaveSuffix("₫"))
	})
})
