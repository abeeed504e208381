package gst_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"crm-backend/internal/gst"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCompute_IntraState(t *testing.T) {
	b, err := gst.Compute(d("100000"), d("18"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !b.CGST.Equal(d("9000")) {
		t.Errorf("cgst = %s, want 9000", b.CGST)
	}
	if !b.SGST.Equal(d("9000")) {
		t.Errorf("sgst = %s, want 9000", b.SGST)
	}
	if !b.IGST.IsZero() {
		t.Errorf("igst = %s, want 0", b.IGST)
	}
	if !b.Total.Equal(d("18000")) {
		t.Errorf("total = %s, want 18000", b.Total)
	}
	if !b.FinalAmount.Equal(d("118000")) {
		t.Errorf("final amount = %s, want 118000", b.FinalAmount)
	}
}

func TestCompute_InterState(t *testing.T) {
	b, err := gst.Compute(d("100000"), d("18"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !b.CGST.IsZero() || !b.SGST.IsZero() {
		t.Errorf("cgst/sgst = %s/%s, want 0/0", b.CGST, b.SGST)
	}
	if !b.IGST.Equal(d("18000")) {
		t.Errorf("igst = %s, want 18000", b.IGST)
	}
	if !b.Total.Equal(d("18000")) {
		t.Errorf("total = %s, want 18000", b.Total)
	}
	if !b.FinalAmount.Equal(d("118000")) {
		t.Errorf("final amount = %s, want 118000", b.FinalAmount)
	}
}

// The split never changes the total tax: intra and inter state breakdowns of
// the same line always agree, and the halves always recombine exactly.
func TestCompute_SplitInvariant(t *testing.T) {
	cases := []struct {
		base string
		rate string
	}{
		{"100000", "18"},
		{"999.99", "18"},
		{"123.45", "5"},
		{"0.01", "18"},
		{"0", "18"},
		{"75000", "12"},
		{"33333.33", "28"},
	}

	for _, tc := range cases {
		intra, err := gst.Compute(d(tc.base), d(tc.rate), true)
		if err != nil {
			t.Fatalf("Compute(%s, %s, true): %v", tc.base, tc.rate, err)
		}
		inter, err := gst.Compute(d(tc.base), d(tc.rate), false)
		if err != nil {
			t.Fatalf("Compute(%s, %s, false): %v", tc.base, tc.rate, err)
		}

		wantTotal := d(tc.base).Mul(d(tc.rate)).Div(d("100"))
		if !intra.CGST.Add(intra.SGST).Equal(wantTotal) {
			t.Errorf("base %s rate %s: cgst+sgst = %s, want %s",
				tc.base, tc.rate, intra.CGST.Add(intra.SGST), wantTotal)
		}
		if !intra.CGST.Add(intra.SGST).Equal(inter.IGST) {
			t.Errorf("base %s rate %s: intra split %s != inter igst %s",
				tc.base, tc.rate, intra.CGST.Add(intra.SGST), inter.IGST)
		}
		if !intra.Total.Equal(inter.Total) {
			t.Errorf("base %s rate %s: totals diverge (%s vs %s)",
				tc.base, tc.rate, intra.Total, inter.Total)
		}
	}
}

func TestCompute_NegativeInputs(t *testing.T) {
	if _, err := gst.Compute(d("-1"), d("18"), true); !errors.Is(err, gst.ErrInvalidArgument) {
		t.Errorf("negative base: got %v, want ErrInvalidArgument", err)
	}
	if _, err := gst.Compute(d("100"), d("-18"), false); !errors.Is(err, gst.ErrInvalidArgument) {
		t.Errorf("negative rate: got %v, want ErrInvalidArgument", err)
	}
}

func TestSameState(t *testing.T) {
	if !gst.SameState("Haryana", "Haryana") {
		t.Error("matching states should be intra-state")
	}
	if gst.SameState("Karnataka", "Haryana") {
		t.Error("different states should be inter-state")
	}
}
