package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/pricing"
)

// PaymentProcessor stands in for a card gateway. Reservations and
// memberships only ever see the confirmation id it returns.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, caller models.Identity, input PaymentInput) (*PaymentConfirmation, error)
}

type PaymentInput struct {
	Amount  decimal.Decimal `json:"amount"`
	Concept string          `json:"concept" validate:"omitempty,max=120"`
	// CardNumber is only inspected for the simulated decline card.
	CardNumber string `json:"card_number" validate:"omitempty,min=12,max=19,numeric"`
}

type PaymentConfirmation struct {
	ID     string       `json:"payment_id"`
	Amount models.Money `json:"amount"`
	Status string       `json:"status"`
}

// declinedCard is the test card number the simulator always rejects.
const declinedCard = "4000000000000002"

type simulatedPaymentProcessor struct {
	logger *slog.Logger
}

func NewSimulatedPaymentProcessor(logger *slog.Logger) PaymentProcessor {
	return &simulatedPaymentProcessor{logger: orDefaultLogger(logger)}
}

func (p *simulatedPaymentProcessor) ProcessPayment(ctx context.Context, caller models.Identity, input PaymentInput) (*PaymentConfirmation, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(input.CardNumber) == declinedCard {
		return nil, ErrCardDeclined
	}
	confirmation := &PaymentConfirmation{
		ID:     "pay_" + uuid.NewString(),
		Amount: models.NewMoney(pricing.Round2(input.Amount)),
		Status: "succeeded",
	}
	p.logger.InfoContext(ctx, "simulated payment accepted",
		slog.Int("user_id", caller.UserID),
		slog.String("payment_id", confirmation.ID),
		slog.String("amount", confirmation.Amount.String()),
	)
	return confirmation, nil
}
