package card

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/core/events"
	"github.com/frahmantamala/cardtracker/internal/payment"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*Card, error)
	// GetByID returns errors.ErrCardNotFound when id is absent.
	GetByID(ctx context.Context, id string) (*Card, error)
	Create(ctx context.Context, c *Card) error
	Update(ctx context.Context, c *Card) error
	Delete(ctx context.Context, id string) error
	// SaveSettlement writes the card and, when non-nil, appends p in one
	// atomic batch.
	SaveSettlement(ctx context.Context, c *Card, p *payment.Payment) error
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		location:  time.Local,
	}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLocation sets the timezone whose calendar decides due dates.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.location = loc
	}
	return s
}

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

// ListCards returns every card ordered by due date. A failed read is
// logged and reported as an empty list.
func (s *Service) ListCards(ctx context.Context) ([]View, error) {
	cards, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Warn("failed to read cards, returning empty list", "error", err)
		return []View{}, nil
	}
	return SortByDueDate(cards, s.today()), nil
}

func (s *Service) GetCard(ctx context.Context, id string) (*View, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewView(c, s.today())
	return &view, nil
}

func (s *Service) CreateCard(ctx context.Context, dto CardDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := NewCard(dto, s.now())
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create card", "name", c.Name, "error", err)
		return nil, errors.NewStorageError("Failed to save card", err)
	}

	s.logger.Info("card created", "card_id", c.ID, "name", c.Name)
	view := NewView(c, s.today())
	return &view, nil
}

func (s *Service) UpdateCard(ctx context.Context, id string, dto CardDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Replace(dto, s.now())
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, s.writeError("failed to update card", id, err)
	}

	s.logger.Info("card updated", "card_id", id)
	view := NewView(c, s.today())
	return &view, nil
}

// DeleteCard removes the card. Its payments stay in the ledger.
func (s *Service) DeleteCard(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError("failed to delete card", id, err)
	}
	s.logger.Info("card deleted", "card_id", id)
	return nil
}

// SetPaymentStatus moves a card to status, settling its usage when the
// card becomes completed. Repeating the current status changes nothing.
func (s *Service) SetPaymentStatus(ctx context.Context, id string, rawStatus string) (*StatusUpdateResponse, error) {
	status, err := payment.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	settlement := Reconcile(c, status, s.now())
	if !settlement.Changed {
		s.logger.Debug("payment status unchanged", "card_id", id, "status", status)
		return statusResponse(c), nil
	}

	if err := s.repo.SaveSettlement(ctx, settlement.Card, settlement.Payment); err != nil {
		return nil, s.writeError("failed to save payment status", id, err)
	}

	s.logger.Info("payment status updated",
		"card_id", id,
		"from", c.PaymentStatus,
		"to", status,
		"ledger_entry", settlement.Payment != nil)

	if status == payment.StatusCompleted {
		s.publishCompleted(ctx, c, settlement)
	}

	return statusResponse(settlement.Card), nil
}

// Summary aggregates every card. A failed read yields an empty summary.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	cards, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Warn("failed to read cards, returning empty summary", "error", err)
		cards = nil
	}
	summary := Summarize(cards, s.today())
	return &summary, nil
}

func (s *Service) load(ctx context.Context, id string) (*Card, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrCardNotFound) {
			return nil, errors.ErrCardNotFound
		}
		s.logger.Error("failed to load card", "card_id", id, "error", err)
		return nil, errors.NewStorageError("Failed to load card", err)
	}
	return c, nil
}

func (s *Service) writeError(msg, id string, err error) error {
	if stderrors.Is(err, errors.ErrCardNotFound) {
		return errors.ErrCardNotFound
	}
	s.logger.Error(msg, "card_id", id, "error", err)
	return errors.NewStorageError("Failed to save card", err)
}

func (s *Service) publishCompleted(ctx context.Context, before *Card, settlement Settlement) {
	if s.publisher == nil {
		return
	}
	paymentID := ""
	amount := before.UsedAmount
	if settlement.Payment != nil {
		paymentID = settlement.Payment.ID
		amount = settlement.Payment.Amount
	}
	evt := events.NewCardPaymentCompletedEvent(before.ID, before.Name, paymentID, amount, settlement.Card.UpdatedAt)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish card event", "card_id", before.ID, "error", err)
	}
}

func statusResponse(c *Card) *StatusUpdateResponse {
	return &StatusUpdateResponse{
		CardID:    c.ID,
		Status:    c.PaymentStatus,
		UpdatedAt: c.UpdatedAt,
	}
}
