package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimulatedPayment(t *testing.T) {
	p := NewSimulatedPaymentProcessor(nil)
	ctx := context.Background()

	conf, err := p.ProcessPayment(ctx, player(7), PaymentInput{Amount: decimal.RequireFromString("25.505")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(conf.ID, "pay_") || conf.Amount.String() != "25.51" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}

	again, _ := p.ProcessPayment(ctx, player(7), PaymentInput{Amount: decimal.NewFromInt(1)})
	if again.ID == conf.ID {
		t.Fatalf("expected unique confirmation ids")
	}

	if _, err := p.ProcessPayment(ctx, player(7), PaymentInput{Amount: decimal.Zero}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := p.ProcessPayment(ctx, player(7), PaymentInput{Amount: decimal.NewFromInt(10), CardNumber: declinedCard}); !errors.Is(err, ErrCardDeclined) {
		t.Fatalf("expected ErrCardDeclined, got %v", err)
	}
}
