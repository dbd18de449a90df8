package payment

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/core/events"
)

type RepositoryAPI interface {
	GetByCardID(ctx context.Context, cardID string) ([]*Payment, error)
	Create(ctx context.Context, p *Payment) error
}

// CardLookup tells whether a card exists without pulling in the card package.
type CardLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	cards     CardLookup
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, cards CardLookup, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cards:     cards,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListByCard returns the card's payments newest first. A failed read is
// logged and reported as an empty history.
func (s *Service) ListByCard(ctx context.Context, cardID string) ([]*Payment, error) {
	payments, err := s.repo.GetByCardID(ctx, cardID)
	if err != nil {
		s.logger.Warn("failed to read payments, returning empty list", "card_id", cardID, "error", err)
		return []*Payment{}, nil
	}
	if payments == nil {
		payments = []*Payment{}
	}
	SortByPaymentDateDesc(payments)
	return payments, nil
}

// RecordPayment appends a completed, unverified payment to an existing card.
func (s *Service) RecordPayment(ctx context.Context, cardID string, dto CreatePaymentDTO) (*Payment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.cards.Exists(ctx, cardID)
	if err != nil {
		s.logger.Error("failed to look up card", "card_id", cardID, "error", err)
		return nil, errors.NewStorageError("Failed to load card", err)
	}
	if !exists {
		return nil, errors.ErrCardNotFound
	}

	p := NewPayment(cardID, *dto.Amount, dto.Notes, s.now())
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create payment record", "card_id", cardID, "error", err)
		return nil, errors.NewStorageError("Failed to save payment", err)
	}

	s.logger.Info("payment recorded", "payment_id", p.ID, "card_id", cardID, "amount", p.Amount.String())

	if s.publisher != nil {
		evt := events.NewPaymentRecordedEvent(p.ID, cardID, p.Amount, p.CreatedAt)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish payment event", "payment_id", p.ID, "error", err)
		}
	}

	return p, nil
}

// History summarises a card's payments. Unlike ListByCard a read failure
// is reported to the caller.
func (s *Service) History(ctx context.Context, cardID string) (*History, error) {
	payments, err := s.repo.GetByCardID(ctx, cardID)
	if err != nil {
		s.logger.Error("failed to read payments", "card_id", cardID, "error", err)
		return nil, errors.NewStorageError("Failed to load payments", err)
	}
	SortByPaymentDateDesc(payments)
	h := Summarize(cardID, payments)
	return &h, nil
}
