package service

import (
	"testing"

	"crm-backend/internal/model"

	"github.com/shopspring/decimal"
)

func TestDerivePaymentStatus(t *testing.T) {
	d := func(s string) decimal.Decimal {
		v, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad decimal %q: %v", s, err)
		}
		return v
	}

	tests := []struct {
		name    string
		advance string
		final   string
		want    string
	}{
		{"nothing paid", "0", "118000", model.PaymentStatusPending},
		{"first installment", "50000", "118000", model.PaymentStatusPartial},
		{"one rupee short", "117999", "118000", model.PaymentStatusPartial},
		{"exactly paid", "118000", "118000", model.PaymentStatusPaid},
		{"overpaid", "120000", "118000", model.PaymentStatusPaid},
		{"zero total stays pending", "0", "0", model.PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := derivePaymentStatus(d(tt.advance), d(tt.final))
			if got != tt.want {
				t.Errorf("derivePaymentStatus(%s, %s) = %q, want %q", tt.advance, tt.final, got, tt.want)
			}
		})
	}
}
