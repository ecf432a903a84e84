package grn

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ResolveTaxPercent returns the purchase tax percentage applicable to an
// effective unit price under a slab table.
//
// A single-slab table always answers with its own rate. With multiple slabs,
// each SlabEnd is a tax-inclusive ceiling: the exclusive ceiling is
// slabEnd / (1 + salesTax/100), slabs are evaluated in table order and the
// first slab whose exclusive ceiling covers the price wins. When the price
// exceeds every ceiling the first slab's rate is returned, matching the
// upstream tax master behavior.
func ResolveTaxPercent(slabs []TaxSlab, effectiveUnitPrice decimal.Decimal) decimal.Decimal {
	if len(slabs) == 0 {
		return decimal.Zero
	}
	if len(slabs) == 1 {
		return slabs[0].PurchaseTaxPercent
	}

	for _, slab := range slabs {
		divisor := decimal.NewFromInt(1).Add(slab.SalesTaxPercent.Div(hundred))
		exclusiveCeiling := slab.SlabEnd.Div(divisor)
		if exclusiveCeiling.GreaterThanOrEqual(effectiveUnitPrice) {
			return slab.PurchaseTaxPercent
		}
	}

	return slabs[0].PurchaseTaxPercent
}
