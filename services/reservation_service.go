package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/sports-center/cache"
	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/lifecycle"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/pricing"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/repositories"
	"github.com/Dosada05/sports-center/schedule"
)

const (
	msgRefundFull = "Reserva cancelada. Se te reembolsará el 100% del monto pagado."
	msgRefundHalf = "Reserva cancelada. Se te reembolsará el 50% del monto pagado."
)

type ReservationService interface {
	// Quote prices a booking for the caller without reserving anything.
	Quote(ctx context.Context, caller models.Identity, input QuoteInput) (*PriceBreakdown, error)
	// CheckConflict fails with ErrSlotTaken when r overlaps an active
	// reservation of the facility on date.
	CheckConflict(ctx context.Context, exec repositories.SQLExecutor, facilityID int, date schedule.Date, r schedule.Range) error
	Create(ctx context.Context, caller models.Identity, input CreateReservationInput) (*models.Reservation, *PriceBreakdown, error)
	List(ctx context.Context, caller models.Identity) ([]models.Reservation, error)
	RefundPreview(ctx context.Context, caller models.Identity, reservationID int) (*RefundBreakdown, error)
	Cancel(ctx context.Context, caller models.Identity, reservationID int) (*CancelResult, error)
	Delete(ctx context.Context, caller models.Identity, reservationID int) error
}

type QuoteInput struct {
	FacilityID int    `json:"facility_id" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
}

type CreateReservationInput struct {
	QuoteInput
	// PaymentID is the confirmation returned by the payment step.
	PaymentID string `json:"payment_id" validate:"required"`
}

// PriceBreakdown is a pricing.Quote rounded to cents for display.
type PriceBreakdown struct {
	BasePrice  models.Money `json:"base_price"`
	Discount   models.Money `json:"member_discount"`
	FinalPrice models.Money `json:"final_price"`
	Member     bool         `json:"is_member"`
}

func newPriceBreakdown(q pricing.Quote) *PriceBreakdown {
	q = q.Rounded()
	return &PriceBreakdown{
		BasePrice:  models.NewMoney(q.BasePrice),
		Discount:   models.NewMoney(q.Discount),
		FinalPrice: models.NewMoney(q.FinalPrice),
		Member:     q.Member,
	}
}

type RefundBreakdown struct {
	PaidPrice    models.Money `json:"paid_price"`
	RefundAmount models.Money `json:"refund_amount"`
	Percentage   int          `json:"refund_percentage"`
	Member       bool         `json:"is_member"`
}

func newRefundBreakdown(r pricing.RefundQuote) *RefundBreakdown {
	return &RefundBreakdown{
		PaidPrice:    models.NewMoney(r.PaidPrice),
		RefundAmount: models.NewMoney(r.RefundAmount),
		Percentage:   r.Percentage,
		Member:       r.Member,
	}
}

type CancelResult struct {
	Reservation *models.Reservation `json:"reservation"`
	Refund      *RefundBreakdown    `json:"refund"`
	Message     string              `json:"message"`
}

type reservationService struct {
	reservationRepo repositories.ReservationRepository
	facilityRepo    repositories.FacilityRepository
	tx              repositories.Transactor
	availability    cache.AvailabilityCache
	broadcaster     Broadcaster
	publisher       events.Publisher
	clock           Clock
	logger          *slog.Logger
}

func NewReservationService(
	reservationRepo repositories.ReservationRepository,
	facilityRepo repositories.FacilityRepository,
	tx repositories.Transactor,
	availability cache.AvailabilityCache,
	broadcaster Broadcaster,
	publisher events.Publisher,
	clock Clock,
	logger *slog.Logger,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		tx:              tx,
		availability:    orNopAvailability(availability),
		broadcaster:     orNopBroadcaster(broadcaster),
		publisher:       orNopPublisher(publisher),
		clock:           clock,
		logger:          orDefaultLogger(logger),
	}
}

// parseSlot validates the date and time range of a booking request.
func (s *reservationService) parseSlot(input QuoteInput) (schedule.Date, schedule.Range, error) {
	day, err := schedule.ParseDate(input.Date, s.clock.Location)
	if err != nil {
		return schedule.Date{}, schedule.Range{}, err
	}
	r, err := schedule.ParseRange(input.StartTime, input.EndTime)
	if err != nil {
		return schedule.Date{}, schedule.Range{}, err
	}
	return schedule.DateOf(day), r, nil
}

func (s *reservationService) activeFacility(ctx context.Context, facilityID int) (*models.Facility, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, repositories.ErrFacilityNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get facility %d: %w", facilityID, err)
	}
	if !facility.Active {
		return nil, ErrNotFound
	}
	return facility, nil
}

func (s *reservationService) Quote(ctx context.Context, caller models.Identity, input QuoteInput) (*PriceBreakdown, error) {
	_, r, err := s.parseSlot(input)
	if err != nil {
		return nil, err
	}
	facility, err := s.activeFacility(ctx, input.FacilityID)
	if err != nil {
		return nil, err
	}
	q, err := pricing.Calculate(facility.HourlyPrice.Decimal, r, caller.IsActiveMember)
	if err != nil {
		return nil, err
	}
	return newPriceBreakdown(q), nil
}

func (s *reservationService) CheckConflict(ctx context.Context, exec repositories.SQLExecutor, facilityID int, date schedule.Date, r schedule.Range) error {
	existing, err := s.reservationRepo.ListActiveByFacilityDate(ctx, exec, facilityID, date)
	if err != nil {
		return fmt.Errorf("failed to load reservations for conflict check: %w", err)
	}
	for _, res := range existing {
		if res.Range().Overlaps(r) {
			return ErrSlotTaken
		}
	}
	return nil
}

func (s *reservationService) Create(ctx context.Context, caller models.Identity, input CreateReservationInput) (*models.Reservation, *PriceBreakdown, error) {
	if caller.IsAdmin {
		return nil, nil, ErrAdminCannotReserve
	}
	if input.PaymentID == "" {
		return nil, nil, ErrPaymentRequired
	}
	date, r, err := s.parseSlot(input.QuoteInput)
	if err != nil {
		return nil, nil, err
	}
	facility, err := s.activeFacility(ctx, input.FacilityID)
	if err != nil {
		return nil, nil, err
	}
	if date.At(r.Start, s.clock.Location).Before(s.clock.now()) {
		return nil, nil, ErrReservationInPast
	}

	q, err := pricing.Calculate(facility.HourlyPrice.Decimal, r, caller.IsActiveMember)
	if err != nil {
		return nil, nil, err
	}
	breakdown := newPriceBreakdown(q)

	userID := caller.UserID
	paymentID := input.PaymentID
	reservation := &models.Reservation{
		FacilityID: facility.ID,
		UserID:     &userID,
		Date:       date,
		StartTime:  r.Start,
		EndTime:    r.End,
		TotalPrice: breakdown.FinalPrice,
		Status:     models.ReservationConfirmed,
		PaymentID:  &paymentID,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.CheckConflict(ctx, exec, facility.ID, date, r); err != nil {
			return err
		}
		return s.reservationRepo.Create(ctx, exec, reservation)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrReservationOverlap):
			return nil, nil, ErrSlotTaken
		case errors.Is(err, repositories.ErrFacilityNotFound):
			return nil, nil, ErrNotFound
		case errors.Is(err, ErrSlotTaken):
			return nil, nil, ErrSlotTaken
		}
		return nil, nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.logger.InfoContext(ctx, "reservation confirmed",
		slog.Int("reservation_id", reservation.ID),
		slog.Int("facility_id", facility.ID),
		slog.Int("user_id", caller.UserID),
		slog.String("date", date.String()),
		slog.String("slot", r.String()),
	)
	s.slotsChanged(ctx, reservation)
	publish(ctx, s.publisher, s.logger, events.ReservationConfirmed, reservationEvent(reservation, "", s.clock.now()))

	reservation.Facility = facility
	return reservation, breakdown, nil
}

func (s *reservationService) List(ctx context.Context, caller models.Identity) ([]models.Reservation, error) {
	reservations, err := s.reservationRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for user %d: %w", caller.UserID, err)
	}
	return completeElapsed(ctx, s.reservationRepo, s.clock, s.logger, reservations), nil
}

// completeElapsed reports confirmed reservations whose slot has ended as
// completed and persists what it observed. A failed write is only logged:
// the next read derives the same status again.
func completeElapsed(ctx context.Context, repo repositories.ReservationRepository, clock Clock, logger *slog.Logger, reservations []models.Reservation) []models.Reservation {
	now := clock.now()
	var completed []int
	for i := range reservations {
		res := &reservations[i]
		effective := lifecycle.EffectiveReservationStatus(res.Status, res.Date, res.EndTime, now)
		if effective != res.Status {
			res.Status = effective
			completed = append(completed, res.ID)
		}
	}
	if len(completed) > 0 {
		if err := repo.MarkCompleted(ctx, completed); err != nil {
			logger.WarnContext(ctx, "failed to persist completed reservations", slog.Any("ids", completed), slog.Any("error", err))
		}
	}
	return reservations
}

// load returns the reservation with its effective status.
func (s *reservationService) load(ctx context.Context, reservationID int) (*models.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repositories.ErrReservationNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation %d: %w", reservationID, err)
	}
	effective := completeElapsed(ctx, s.reservationRepo, s.clock, s.logger, []models.Reservation{*res})
	return &effective[0], nil
}

func (s *reservationService) RefundPreview(ctx context.Context, caller models.Identity, reservationID int) (*RefundBreakdown, error) {
	res, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanCancel(*res, caller.UserID); err != nil {
		return nil, err
	}
	return newRefundBreakdown(pricing.Refund(res.TotalPrice.Decimal, caller.IsActiveMember)), nil
}

func (s *reservationService) Cancel(ctx context.Context, caller models.Identity, reservationID int) (*CancelResult, error) {
	res, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanCancel(*res, caller.UserID); err != nil {
		return nil, err
	}

	// The guarded update lets only one of two concurrent cancels win.
	if err := s.reservationRepo.CancelActive(ctx, nil, res.ID); err != nil {
		if errors.Is(err, repositories.ErrReservationNotActive) {
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("failed to cancel reservation %d: %w", res.ID, err)
	}
	res.Status = models.ReservationCancelled

	refund := newRefundBreakdown(pricing.Refund(res.TotalPrice.Decimal, caller.IsActiveMember))
	msg := msgRefundHalf
	if refund.Percentage == 100 {
		msg = msgRefundFull
	}

	s.logger.InfoContext(ctx, "reservation cancelled",
		slog.Int("reservation_id", res.ID),
		slog.Int("user_id", caller.UserID),
		slog.String("refund", refund.RefundAmount.String()),
	)
	s.slotsChanged(ctx, res)
	publish(ctx, s.publisher, s.logger, events.ReservationCancelled, reservationEvent(res, refund.RefundAmount.String(), s.clock.now()))

	return &CancelResult{Reservation: res, Refund: refund, Message: msg}, nil
}

func (s *reservationService) Delete(ctx context.Context, caller models.Identity, reservationID int) error {
	res, err := s.load(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := lifecycle.CanDelete(*res, caller.UserID); err != nil {
		return err
	}
	if err := s.reservationRepo.Delete(ctx, res.ID); err != nil {
		if errors.Is(err, repositories.ErrReservationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete reservation %d: %w", res.ID, err)
	}
	return nil
}

// slotsChanged drops the cached availability of the reservation's day and
// tells the facility room about it.
func (s *reservationService) slotsChanged(ctx context.Context, res *models.Reservation) {
	s.availability.Invalidate(ctx, res.FacilityID, res.Date)
	s.broadcaster.BroadcastToRoom(realtime.FacilityRoom(res.FacilityID), realtime.Message{
		Type: realtime.TypeAvailabilityChanged,
		Payload: map[string]interface{}{
			"facility_id": res.FacilityID,
			"date":        res.Date.String(),
		},
	})
}

func reservationEvent(res *models.Reservation, refund string, at time.Time) events.ReservationEvent {
	userID := 0
	if res.UserID != nil {
		userID = *res.UserID
	}
	return events.ReservationEvent{
		ReservationID: res.ID,
		FacilityID:    res.FacilityID,
		UserID:        userID,
		Date:          res.Date.String(),
		StartTime:     res.StartTime.String(),
		EndTime:       res.EndTime.String(),
		TotalPrice:    res.TotalPrice.String(),
		RefundAmount:  refund,
		OccurredAt:    at,
	}
}
