package report

import (
	"sort"
	"strings"
	"time"

	"github.com/hasancagrigungor/ravla/internal/ingest"
)

// ProductQuantity is one product's summed quantity.
type ProductQuantity struct {
	Product       string `json:"product"`
	TotalQuantity int    `json:"total_quantity"`
}

// BreakdownResult carries the per-product totals plus how many rows hit the
// uneven-split fallback, where the full quantity is assigned to every
// sub-product and therefore double-counts. Callers are expected to surface
// FullAssignedRows to the user instead of hiding it.
type BreakdownResult struct {
	Products []ProductQuantity `json:"products"`
	// FullAssignedRows counts rows whose quantity was not evenly divisible
	// across slash-separated sub-products.
	FullAssignedRows int `json:"full_assigned_rows"`
}

// ProductBreakdown sums quantity per product, splitting slash-separated
// sub-products. A quantity evenly divisible by the sub-product count is split
// evenly; otherwise each sub-product receives the full quantity and the row
// is counted in FullAssignedRows. Results are sorted descending by quantity,
// ties by product name.
func ProductBreakdown(rows []ingest.Row) BreakdownResult {
	totals := make(map[string]int)
	var order []string
	fullAssigned := 0

	add := func(product string, qty int) {
		if _, ok := totals[product]; !ok {
			order = append(order, product)
		}
		totals[product] += qty
	}

	for _, r := range rows {
		if r.Product == "" {
			continue
		}
		parts := splitSubProducts(r.Product)
		if len(parts) == 0 {
			add(r.Product, r.Quantity)
			continue
		}
		if len(parts) == 1 {
			// trimmed name, so " Silgi / " and "Silgi" land on one key
			add(parts[0], r.Quantity)
			continue
		}
		if r.Quantity >= len(parts) && r.Quantity%len(parts) == 0 {
			per := r.Quantity / len(parts)
			for _, p := range parts {
				add(p, per)
			}
		} else {
			fullAssigned++
			for _, p := range parts {
				add(p, r.Quantity)
			}
		}
	}

	out := make([]ProductQuantity, 0, len(order))
	for _, p := range order {
		out = append(out, ProductQuantity{Product: p, TotalQuantity: totals[p]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].Product < out[j].Product
	})
	return BreakdownResult{Products: out, FullAssignedRows: fullAssigned}
}

func splitSubProducts(name string) []string {
	raw := strings.Split(name, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// DailyTotal is one day's row and quantity total.
type DailyTotal struct {
	Date     time.Time `json:"date"`
	Rows     int       `json:"rows"`
	Quantity int       `json:"quantity"`
}

// DailyTotals buckets rows by the chosen date column; null-dated rows are
// skipped. Sorted ascending by date.
func DailyTotals(rows []ingest.Row, role string) []DailyTotal {
	totals := make(map[time.Time]*DailyTotal)
	for _, r := range rows {
		d, ok := r.Date(role)
		if !ok {
			continue
		}
		t, ok := totals[d]
		if !ok {
			t = &DailyTotal{Date: d}
			totals[d] = t
		}
		t.Rows++
		t.Quantity += r.Quantity
	}

	out := make([]DailyTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DistributionBucket counts how many orders carry a given number of distinct
// products.
type DistributionBucket struct {
	DistinctProducts int `json:"distinct_products"`
	Orders           int `json:"orders"`
}

// OrderProductDistribution summarizes OrdersWithManyProducts output into a
// histogram over the distinct-product count.
func OrderProductDistribution(rows []ingest.Row) []DistributionBucket {
	all := OrdersWithManyProducts(rows, 0, CmpGTE)

	buckets := make(map[int]int)
	for _, o := range all {
		buckets[o.DistinctProducts]++
	}

	out := make([]DistributionBucket, 0, len(buckets))
	for n, c := range buckets {
		out = append(out, DistributionBucket{DistinctProducts: n, Orders: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistinctProducts < out[j].DistinctProducts })
	return out
}
