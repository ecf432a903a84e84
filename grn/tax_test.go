package grn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func slab(end, salesPct, purchasePct float64) TaxSlab {
	return TaxSlab{
		SlabEnd:            decimal.NewFromFloat(end),
		SalesTaxPercent:    decimal.NewFromFloat(salesPct),
		PurchaseTaxPercent: decimal.NewFromFloat(purchasePct),
	}
}

func TestResolveTaxPercent(t *testing.T) {
	twoSlabs := []TaxSlab{
		slab(1000, 18, 12),
		slab(2000, 12, 18),
	}

	tests := []struct {
		name  string
		slabs []TaxSlab
		price float64
		want  float64
	}{
		{
			name:  "empty table",
			slabs: nil,
			price: 500,
			want:  0,
		},
		{
			name:  "single slab always answers its own rate",
			slabs: []TaxSlab{slab(1000, 18, 12)},
			price: 99999,
			want:  12,
		},
		{
			// Scenario: slab 1 exclusive ceiling 1000/1.18 = 847.46 >= 750.
			name:  "first covering slab wins",
			slabs: twoSlabs,
			price: 750,
			want:  12,
		},
		{
			name:  "price above first ceiling falls to second slab",
			slabs: twoSlabs,
			price: 900,
			want:  18,
		},
		{
			name:  "price above every ceiling falls back to first slab",
			slabs: twoSlabs,
			price: 5000,
			want:  12,
		},
		{
			name:  "price exactly on exclusive ceiling is covered",
			slabs: []TaxSlab{slab(1180, 18, 5), slab(9999, 0, 28)},
			price: 1000,
			want:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTaxPercent(tt.slabs, decimal.NewFromFloat(tt.price))
			assert.True(t, decimal.NewFromFloat(tt.want).Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestResolveTaxPercentIsDeterministic(t *testing.T) {
	slabs := []TaxSlab{slab(1000, 18, 12), slab(2000, 12, 18)}
	price := decimal.NewFromFloat(750)

	first := ResolveTaxPercent(slabs, price)
	for i := 0; i < 50; i++ {
		assert.True(t, first.Equal(ResolveTaxPercent(slabs, price)))
	}
}
