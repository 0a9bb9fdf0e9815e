package report

// VATDivisor converts a tax-inclusive total into its taxable base.
// Bolivian IVA is 13%, charged inside the invoice total, so the base is
// total/1.13 rather than total*0.87. Fixed by regulation, not configurable.
const VATDivisor = 1.13

// TaxableBase returns the tax-exclusive portion of a total.
func TaxableBase(total float64) float64 {
	return total / VATDivisor
}

// TaxAmount returns the IVA portion of a total.
func TaxAmount(total float64) float64 {
	return total - total/VATDivisor
}
