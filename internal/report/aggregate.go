package report

import "sort"

// VendorTotal is one vendor's accumulated invoice amount.
type VendorTotal struct {
	Vendor string
	Total  float64
}

// MonthTotal is one calendar month's accumulated invoice amount.
// Month is the YYYY-MM prefix of the invoice date.
type MonthTotal struct {
	Month string
	Total float64
}

// TopVendors returns up to n vendors ordered by descending total amount.
// Ties break alphabetically so the ordering is stable across runs.
func TopVendors(invoices []Invoice, n int) []VendorTotal {
	byVendor := make(map[string]float64)
	for _, inv := range invoices {
		byVendor[inv.Vendor] += inv.Total
	}
	totals := make([]VendorTotal, 0, len(byVendor))
	for v, t := range byVendor {
		totals = append(totals, VendorTotal{Vendor: v, Total: t})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].Vendor < totals[j].Vendor
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// MonthlyTotals returns per-month totals in chronological order.
func MonthlyTotals(invoices []Invoice) []MonthTotal {
	byMonth := make(map[string]float64)
	for _, inv := range invoices {
		byMonth[monthKey(inv.Date)] += inv.Total
	}
	totals := make([]MonthTotal, 0, len(byMonth))
	for m, t := range byMonth {
		totals = append(totals, MonthTotal{Month: m, Total: t})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals
}

// DistinctVendors counts distinct vendor names.
func DistinctVendors(invoices []Invoice) int {
	seen := make(map[string]struct{})
	for _, inv := range invoices {
		seen[inv.Vendor] = struct{}{}
	}
	return len(seen)
}

// DistinctMonths counts distinct YYYY-MM months across invoice dates.
func DistinctMonths(invoices []Invoice) int {
	seen := make(map[string]struct{})
	for _, inv := range invoices {
		seen[monthKey(inv.Date)] = struct{}{}
	}
	return len(seen)
}

func monthKey(isoDate string) string {
	if len(isoDate) >= 7 {
		return isoDate[:7]
	}
	return isoDate
}
