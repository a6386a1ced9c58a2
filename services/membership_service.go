package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/repositories"
	"github.com/Dosada05/sports-center/schedule"
)

const (
	msgSubscribed = "Te has convertido en socio exitosamente. Disfruta de descuentos exclusivos en todas las instalaciones."
	msgSubCancel  = "Suscripción cancelada. Podrás seguir disfrutando de los beneficios hasta que expire tu suscripción actual."
)

// MembershipService manages the monthly membership. Active members get the
// pricing discount and full refunds.
type MembershipService interface {
	Status(ctx context.Context, caller models.Identity) (*MembershipStatus, error)
	Subscribe(ctx context.Context, caller models.Identity, paymentID string) (*MembershipResult, error)
	CancelSubscription(ctx context.Context, caller models.Identity) (*MembershipResult, error)
}

type MembershipStatus struct {
	IsMember     bool           `json:"is_member"`
	Start        *schedule.Date `json:"membership_start"`
	End          *schedule.Date `json:"membership_end"`
	Active       bool           `json:"is_active_member"`
	Cancelled    bool           `json:"subscription_cancelled"`
	CanSubscribe bool           `json:"can_subscribe"`
	MonthlyFee   models.Money   `json:"monthly_fee"`
	PaymentID    string         `json:"payment_id,omitempty"`
}

type MembershipResult struct {
	Status  *MembershipStatus `json:"data"`
	Message string            `json:"message"`
}

type membershipService struct {
	userRepo   repositories.UserRepository
	publisher  events.Publisher
	clock      Clock
	monthlyFee models.Money
	logger     *slog.Logger
}

func NewMembershipService(
	userRepo repositories.UserRepository,
	publisher events.Publisher,
	clock Clock,
	monthlyFee models.Money,
	logger *slog.Logger,
) MembershipService {
	return &membershipService{
		userRepo:   userRepo,
		publisher:  orNopPublisher(publisher),
		clock:      clock,
		monthlyFee: monthlyFee,
		logger:     orDefaultLogger(logger),
	}
}

func (s *membershipService) user(ctx context.Context, userID int) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return u, nil
}

func (s *membershipService) status(u *models.User) *MembershipStatus {
	return &MembershipStatus{
		IsMember:     u.IsMember,
		Start:        u.MembershipStart,
		End:          u.MembershipEnd,
		Active:       u.IsActiveMember(s.clock.Today()),
		Cancelled:    u.SubscriptionCancelled,
		CanSubscribe: !u.IsAdmin,
		MonthlyFee:   s.monthlyFee,
	}
}

func (s *membershipService) Status(ctx context.Context, caller models.Identity) (*MembershipStatus, error) {
	u, err := s.user(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.status(u), nil
}

// Subscribe buys one month. A membership that is still running is extended
// from its current end date, otherwise the month starts today.
func (s *membershipService) Subscribe(ctx context.Context, caller models.Identity, paymentID string) (*MembershipResult, error) {
	if caller.IsAdmin {
		return nil, ErrAdminCannotSubscribe
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrPaymentRequired
	}
	u, err := s.user(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin {
		return nil, ErrAdminCannotSubscribe
	}

	today := s.clock.Today()
	start := today
	if u.IsMember && u.MembershipEnd != nil && u.MembershipEnd.After(today) {
		start = *u.MembershipEnd
	}
	end := start.AddMonths(1)

	u.IsMember = true
	u.MembershipStart = &start
	u.MembershipEnd = &end
	u.SubscriptionCancelled = false
	if err := s.userRepo.UpdateMembership(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update membership of user %d: %w", u.ID, err)
	}

	s.logger.InfoContext(ctx, "membership subscribed",
		slog.Int("user_id", u.ID),
		slog.String("membership_end", end.String()),
	)
	publish(ctx, s.publisher, s.logger, events.MembershipChanged, events.MembershipEvent{
		UserID:        u.ID,
		Action:        "subscribed",
		MembershipEnd: end.String(),
		PaymentID:     paymentID,
		OccurredAt:    s.clock.now(),
	})

	st := s.status(u)
	st.PaymentID = paymentID
	return &MembershipResult{Status: st, Message: msgSubscribed}, nil
}

// CancelSubscription stops renewal only; benefits last until the current
// end date.
func (s *membershipService) CancelSubscription(ctx context.Context, caller models.Identity) (*MembershipResult, error) {
	if caller.IsAdmin {
		return nil, ErrAdminCannotCancelSub
	}
	u, err := s.user(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsMember {
		return nil, ErrNotAMember
	}

	u.SubscriptionCancelled = true
	if err := s.userRepo.UpdateMembership(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update membership of user %d: %w", u.ID, err)
	}

	end := ""
	if u.MembershipEnd != nil {
		end = u.MembershipEnd.String()
	}
	publish(ctx, s.publisher, s.logger, events.MembershipChanged, events.MembershipEvent{
		UserID:        u.ID,
		Action:        "cancelled",
		MembershipEnd: end,
		OccurredAt:    s.clock.now(),
	})
	return &MembershipResult{Status: s.status(u), Message: msgSubCancel}, nil
}
