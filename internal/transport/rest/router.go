package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/cardtracker/api"
	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/card"
	cardrecords "github.com/frahmantamala/cardtracker/internal/card/records"
	"github.com/frahmantamala/cardtracker/internal/core/events"
	"github.com/frahmantamala/cardtracker/internal/payment"
	paymentrecords "github.com/frahmantamala/cardtracker/internal/payment/records"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/frahmantamala/cardtracker/internal/transport/middleware"
	"github.com/frahmantamala/cardtracker/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Options struct {
	Logger           *slog.Logger
	Location         *time.Location
	AllowedOrigins   []string
	ValidateRequests bool
	// StoreName labels the store in /health output.
	StoreName string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Handlers groups the HTTP handlers of every module.
type Handlers struct {
	Card    *card.Handler
	Payment *payment.Handler
	Health  *HealthHandler
}

// NewHandlers wires repositories, services and handlers over one store.
func NewHandlers(store recordstore.Store, publisher events.Publisher, opts Options) *Handlers {
	base := transport.NewBaseHandler(opts.Logger)

	cardRepo := cardrecords.NewCardRepository(store)
	paymentRepo := paymentrecords.NewPaymentRepository(store)

	cardService := card.NewService(cardRepo, publisher, base.Logger).WithLocation(opts.Location)
	paymentService := payment.NewService(paymentRepo, cardRepo, publisher, base.Logger)
	if opts.Now != nil {
		cardService.WithClock(opts.Now)
		paymentService.WithClock(opts.Now)
	}

	name := opts.StoreName
	if name == "" {
		name = "record_store"
	}

	return &Handlers{
		Card:    card.NewHandler(base, cardService),
		Payment: payment.NewHandler(base, paymentService),
		Health:  NewHealthHandler(store, name),
	}
}

// NewRouter builds the full HTTP surface over store.
func NewRouter(ctx context.Context, store recordstore.Store, publisher events.Publisher, opts Options) (*chi.Mux, error) {
	handlers := NewHandlers(store, publisher, opts)
	logger := handlers.Card.Logger

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.ValidateRequests {
		doc, err := api.Load(ctx)
		if err != nil {
			return nil, err
		}
		validator, err := api.RequestValidator(doc, handlers.Card.BaseHandler)
		if err != nil {
			return nil, fmt.Errorf("request validator: %w", err)
		}
		router.Use(validator)
	}

	RegisterAllRoutes(router, handlers)
	return router, nil
}

func RegisterAllRoutes(router *chi.Mux, h *Handlers) {
	// Serve the OpenAPI document and Swagger UI
	router.Get(swagger.DocumentURL, api.ServeDocument)
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", h.Health.healthCheckHandler)
	router.Get("/ping", h.Health.pingHandler)

	router.Get("/summary", h.Card.GetSummary)

	router.Route("/cards", func(r chi.Router) {
		r.Get("/", h.Card.ListCards)   // GET /cards
		r.Post("/", h.Card.CreateCard) // POST /cards

		r.Route("/{id}", func(cr chi.Router) {
			cr.Get("/", h.Card.GetCard)
			cr.Put("/", h.Card.UpdateCard)
			cr.Delete("/", h.Card.DeleteCard)
			cr.Put("/payment", h.Card.UpdatePaymentStatus) // PUT /cards/:id/payment

			cr.Get("/payments", h.Payment.ListPayments)
			cr.Post("/payments", h.Payment.CreatePayment)
			cr.Get("/payments/summary", h.Payment.GetPaymentHistory)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Card.HandleError(w, errors.NewNotFoundError("Route not found", errors.ErrCodeRouteNotFound))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.Card.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
