package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type mockPaymentService struct {
	payments   []*payment.Payment
	history    *payment.History
	recordErr  error
	historyErr error
	lastDTO    payment.CreatePaymentDTO
}

func (m *mockPaymentService) ListByCard(ctx context.Context, cardID string) ([]*payment.Payment, error) {
	return m.payments, nil
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, cardID string, dto payment.CreatePaymentDTO) (*payment.Payment, error) {
	m.lastDTO = dto
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return payment.NewPayment(cardID, *dto.Amount, dto.Notes, time.Now()), nil
}

func (m *mockPaymentService) History(ctx context.Context, cardID string) (*payment.History, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

var _ = Describe("Payment Handler", func() {
	var (
		svc    *mockPaymentService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &mockPaymentService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		h := payment.NewHandler(transport.NewBaseHandler(logger), svc)

		r := chi.NewRouter()
		r.Get("/cards/{id}/payments", h.ListPayments)
		r.Post("/cards/{id}/payments", h.CreatePayment)
		r.Get("/cards/{id}/payments/summary", h.GetPaymentHistory)
		router = r
	})

	serve := func(method, target string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("lists payments as a JSON array", func() {
		svc.payments = []*payment.Payment{payment.NewPayment("card-1", decimal.NewFromInt(2000000), nil, time.Now())}

		rec := serve(http.MethodGet, "/cards/card-1/payments", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveLen(1))
		Expect(body[0]["amount"]).To(Equal(float64(2000000)))
		Expect(body[0]["verificationStatus"]).To(Equal("unverified"))
	})

	It("creates a payment with 201", func() {
		rec := serve(http.MethodPost, "/cards/card-1/payments", []byte(`{"amount": 750000, "notes": "early"}`))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(svc.lastDTO.Amount.String()).To(Equal("750000"))
		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["cardId"]).To(Equal("card-1"))
		Expect(body["status"]).To(Equal("completed"))
	})

	It("rejects malformed JSON with 400", func() {
		rec := serve(http.MethodPost, "/cards/card-1/payments", []byte(`{"amount":`))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidRequestBody)))
	})

	It("maps service errors onto status codes", func() {
		svc.recordErr = internal.ErrCardNotFound
		rec := serve(http.MethodPost, "/cards/nope/payments", []byte(`{"amount": 1}`))
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		svc.recordErr = errors.New("unexpected")
		rec = serve(http.MethodPost, "/cards/card-1/payments", []byte(`{"amount": 1}`))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("serves the payment summary", func() {
		svc.history = &payment.History{CardID: "card-1", Count: 2, TotalPaid: decimal.NewFromInt(10)}

		rec := serve(http.MethodGet, "/cards/card-1/payments/summary", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"count":2`))
		Expect(rec.Body.String()).To(ContainSubstring(`"totalPaid":10`))
	})
})
