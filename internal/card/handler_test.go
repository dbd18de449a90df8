package card_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/card"
	"github.com/frahmantamala/cardtracker/internal/payment"
	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type mockCardService struct {
	views     []card.View
	err       error
	lastDTO   card.CardDTO
	lastID    string
	lastState string
}

func (m *mockCardService) ListCards(ctx context.Context) ([]card.View, error) {
	return m.views, m.err
}

func (m *mockCardService) GetCard(ctx context.Context, id string) (*card.View, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &m.views[0], nil
}

func (m *mockCardService) CreateCard(ctx context.Context, dto card.CardDTO) (*card.View, error) {
	m.lastDTO = dto
	if m.err != nil {
		return nil, m.err
	}
	c := card.NewCard(dto, time.Now())
	c.ID = "card-1"
	v := card.NewView(c, time.Now())
	return &v, nil
}

func (m *mockCardService) UpdateCard(ctx context.Context, id string, dto card.CardDTO) (*card.View, error) {
	m.lastID = id
	return m.CreateCard(ctx, dto)
}

func (m *mockCardService) DeleteCard(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}

func (m *mockCardService) SetPaymentStatus(ctx context.Context, id string, status string) (*card.StatusUpdateResponse, error) {
	m.lastID = id
	m.lastState = status
	if m.err != nil {
		return nil, m.err
	}
	return &card.StatusUpdateResponse{CardID: id, Status: payment.Status(status), UpdatedAt: time.Now()}, nil
}

func (m *mockCardService) Summary(ctx context.Context) (*card.Summary, error) {
	s := card.Summarize(nil, time.Now())
	return &s, m.err
}

var _ = Describe("Card Handler", func() {
	var (
		svc    *mockCardService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &mockCardService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		h := card.NewHandler(transport.NewBaseHandler(logger), svc)

		r := chi.NewRouter()
		r.Get("/cards", h.ListCards)
		r.Post("/cards", h.CreateCard)
		r.Get("/cards/{id}", h.GetCard)
		r.Put("/cards/{id}", h.UpdateCard)
		r.Delete("/cards/{id}", h.DeleteCard)
		r.Put("/cards/{id}/payment", h.UpdatePaymentStatus)
		r.Get("/summary", h.GetSummary)
		router = r
	})

	serve := func(method, target string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("creates a card with 201 and camelCase fields", func() {
		rec := serve(http.MethodPost, "/cards", []byte(`{"name":"Visa","statementDate":5,"dueDate":25,"creditLimit":10000000,"usedAmount":2000000}`))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(svc.lastDTO.CreditLimit.String()).To(Equal("10000000"))

		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["id"]).To(Equal("card-1"))
		Expect(body["remainingAmount"]).To(Equal(float64(8000000)))
		Expect(body["paymentStatus"]).To(Equal("pending"))
		Expect(body).To(HaveKey("daysUntilDue"))
		Expect(body).To(HaveKey("dueLabel"))
	})

	It("lists cards as a JSON array", func() {
		c := card.NewCard(visaDTO(), time.Now())
		svc.views = []card.View{card.NewView(c, time.Now())}

		rec := serve(http.MethodGet, "/cards", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveLen(1))
		Expect(body[0]["name"]).To(Equal("Visa"))
	})

	It("rejects malformed JSON with 400", func() {
		rec := serve(http.MethodPost, "/cards", []byte(`{"name":`))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidRequestBody)))
	})

	It("passes the path id and status to the service", func() {
		rec := serve(http.MethodPut, "/cards/abc/payment", []byte(`{"status":"completed"}`))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastID).To(Equal("abc"))
		Expect(svc.lastState).To(Equal("completed"))
		Expect(rec.Body.String()).To(ContainSubstring(`"cardId":"abc"`))
	})

	It("maps service errors onto status codes", func() {
		svc.err = internal.ErrInvalidPaymentStatus
		rec := serve(http.MethodPut, "/cards/abc/payment", []byte(`{"status":"bogus"}`))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		svc.err = internal.ErrCardNotFound
		rec = serve(http.MethodGet, "/cards/abc", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeCardNotFound)))

		svc.err = internal.NewStorageError("Failed to save card", nil)
		rec = serve(http.MethodPut, "/cards/abc", []byte(`{"name":"Visa"}`))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("deletes with 204 and no body", func() {
		rec := serve(http.MethodDelete, "/cards/abc", nil)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Body.Len()).To(BeZero())
		Expect(svc.lastID).To(Equal("abc"))
	})

	It("serves the summary", func() {
		rec := serve(http.MethodGet, "/summary", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"totalCards":0`))
		Expect(rec.Body.String()).To(ContainSubstring(`"currency":"VND"`))
	})

	It("serializes amounts as JSON numbers", func() {
		c := card.NewCard(visaDTO(), time.Now())
		c.UsedAmount = decimal.RequireFromString("1500.5")
		svc.views = []card.View{card.NewView(c, time.Now())}

		rec := serve(http.MethodGet, "/cards/x", nil)
		Expect(rec.Body.String()).To(ContainSubstring(`"usedAmount":1500.5`))
	})
})
