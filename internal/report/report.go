// Package report computes the derived views over the unified order table.
// Every function here is pure: inputs are never mutated and repeated calls
// with the same parameters give the same result.
package report

import (
	"sort"
	"time"

	"github.com/hasancagrigungor/ravla/internal/ingest"
)

// Comparator selects how a distinct-count threshold is applied.
type Comparator string

const (
	CmpGTE Comparator = ">="
	CmpEQ  Comparator = "="
	CmpLTE Comparator = "<="
	CmpGT  Comparator = ">"
)

func (c Comparator) Apply(value, threshold int) bool {
	switch c {
	case CmpEQ:
		return value == threshold
	case CmpLTE:
		return value <= threshold
	case CmpGT:
		return value > threshold
	default:
		return value >= threshold
	}
}

// BuyerSummary aggregates one buyer's activity. TotalAmount is nil when the
// unified table carries no amount column.
type BuyerSummary struct {
	Buyer          string   `json:"buyer"`
	DistinctOrders int      `json:"distinct_orders"`
	TotalQuantity  int      `json:"total_quantity"`
	TotalAmount    *float64 `json:"total_amount,omitempty"`
}

// BuyerSummaries groups by buyer in first-seen order. Distinct order counts
// come from deduplicated (buyer, order) pairs, so three line items on one
// order count as one order. Nil amounts are excluded from the sum.
func BuyerSummaries(rows []ingest.Row, hasAmount bool) []BuyerSummary {
	var order []string
	idx := make(map[string]int)
	seenPair := make(map[[2]string]bool)
	amounts := make(map[string]float64)

	var out []BuyerSummary
	for _, r := range rows {
		i, ok := idx[r.Buyer]
		if !ok {
			i = len(out)
			idx[r.Buyer] = i
			order = append(order, r.Buyer)
			out = append(out, BuyerSummary{Buyer: r.Buyer})
		}
		out[i].TotalQuantity += r.Quantity

		pair := [2]string{r.Buyer, r.OrderID}
		if !seenPair[pair] {
			seenPair[pair] = true
			out[i].DistinctOrders++
		}
		if hasAmount && r.Amount != nil {
			amounts[r.Buyer] += *r.Amount
		}
	}

	if hasAmount {
		for i, buyer := range order {
			v := amounts[buyer]
			out[i].TotalAmount = &v
		}
	}
	return out
}

// OrderProducts is the distinct-product count of one order.
type OrderProducts struct {
	OrderID          string `json:"order_id"`
	DistinctProducts int    `json:"distinct_products"`
}

// OrdersWithManyProducts counts distinct product names per order and keeps
// the orders whose count satisfies the comparator against the threshold.
func OrdersWithManyProducts(rows []ingest.Row, threshold int, cmp Comparator) []OrderProducts {
	var order []string
	products := make(map[string]map[string]bool)

	for _, r := range rows {
		set, ok := products[r.OrderID]
		if !ok {
			set = make(map[string]bool)
			products[r.OrderID] = set
			order = append(order, r.OrderID)
		}
		set[r.Product] = true
	}

	var out []OrderProducts
	for _, id := range order {
		n := len(products[id])
		if cmp.Apply(n, threshold) {
			out = append(out, OrderProducts{OrderID: id, DistinctProducts: n})
		}
	}
	return out
}

// BuyerQuantity is one buyer's summed quantity.
type BuyerQuantity struct {
	Buyer         string `json:"buyer"`
	TotalQuantity int    `json:"total_quantity"`
}

// BuyersOverTotalQuantity sums quantity per buyer and keeps buyers at or
// above the minimum, sorted descending; ties keep first-seen order.
func BuyersOverTotalQuantity(rows []ingest.Row, minTotal int) []BuyerQuantity {
	var order []string
	totals := make(map[string]int)

	for _, r := range rows {
		if _, ok := totals[r.Buyer]; !ok {
			order = append(order, r.Buyer)
		}
		totals[r.Buyer] += r.Quantity
	}

	var out []BuyerQuantity
	for _, buyer := range order {
		if totals[buyer] >= minTotal {
			out = append(out, BuyerQuantity{Buyer: buyer, TotalQuantity: totals[buyer]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalQuantity > out[j].TotalQuantity
	})
	return out
}

// BuyerProductOrders counts the distinct orders in which one buyer bought one
// product.
type BuyerProductOrders struct {
	Buyer          string `json:"buyer"`
	Product        string `json:"product"`
	DistinctOrders int    `json:"distinct_orders"`
}

// SameProductAcrossOrders restricts rows to the given products, deduplicates
// (buyer, product, order) triples and counts distinct orders per
// (buyer, product) pair, so repeated line items within one order do not
// inflate the count. Results at or above minOrders are returned sorted by
// count descending, then buyer ascending.
func SameProductAcrossOrders(rows []ingest.Row, products []string, minOrders int) []BuyerProductOrders {
	wanted := make(map[string]bool, len(products))
	for _, p := range products {
		wanted[p] = true
	}

	type pair struct{ buyer, product string }
	var order []pair
	counts := make(map[pair]int)
	seenTriple := make(map[[3]string]bool)

	for _, r := range rows {
		if !wanted[r.Product] {
			continue
		}
		triple := [3]string{r.Buyer, r.Product, r.OrderID}
		if seenTriple[triple] {
			continue
		}
		seenTriple[triple] = true

		p := pair{r.Buyer, r.Product}
		if _, ok := counts[p]; !ok {
			order = append(order, p)
		}
		counts[p]++
	}

	var out []BuyerProductOrders
	for _, p := range order {
		if counts[p] >= minOrders {
			out = append(out, BuyerProductOrders{
				Buyer:          p.buyer,
				Product:        p.product,
				DistinctOrders: counts[p],
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistinctOrders != out[j].DistinctOrders {
			return out[i].DistinctOrders > out[j].DistinctOrders
		}
		return out[i].Buyer < out[j].Buyer
	})
	return out
}

// FilterOptions selects rows by a date column, an inclusive range and an
// optional source allow-list.
type FilterOptions struct {
	DateRole string
	From     time.Time
	To       time.Time
	// Sources is an allow-list; empty means every source passes.
	Sources []string
	// MissingDate inverts the selection: keep the rows whose chosen date
	// is absent, ignoring From and To. Orders still waiting for a handover
	// date are the typical use.
	MissingDate bool
	// DedupeLatest keeps only the most recent row per order id after
	// sorting ascending by the chosen date.
	DedupeLatest bool
}

// FilterByDate returns the rows whose chosen date parses and falls in the
// inclusive range, with null-dated rows excluded. With MissingDate set it
// returns the null-dated rows instead. The input is not mutated.
func FilterByDate(rows []ingest.Row, opts FilterOptions) []ingest.Row {
	allowed := make(map[string]bool, len(opts.Sources))
	for _, s := range opts.Sources {
		allowed[s] = true
	}

	var out []ingest.Row
	for _, r := range rows {
		d, ok := r.Date(opts.DateRole)
		if opts.MissingDate {
			if ok {
				continue
			}
		} else {
			if !ok {
				continue
			}
			if d.Before(opts.From) || d.After(opts.To) {
				continue
			}
		}
		if len(allowed) > 0 && !allowed[r.Source] {
			continue
		}
		out = append(out, r)
	}

	if opts.DedupeLatest {
		out = dedupeLatestByOrder(out, opts.DateRole)
	}
	return out
}

// dedupeLatestByOrder sorts ascending by the chosen date (stable, so equal
// dates keep input order) and drops all but the last row per order id.
func dedupeLatestByOrder(rows []ingest.Row, role string) []ingest.Row {
	sorted := append([]ingest.Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := sorted[i].Date(role)
		dj, _ := sorted[j].Date(role)
		return di.Before(dj)
	})

	last := make(map[string]int, len(sorted))
	for i, r := range sorted {
		last[r.OrderID] = i
	}

	out := make([]ingest.Row, 0, len(last))
	for i, r := range sorted {
		if last[r.OrderID] == i {
			out = append(out, r)
		}
	}
	return out
}

// TopN keeps the n highest items by metric, descending, ties preserving
// input order. n <= 0 or n >= len returns a copy of the full sorted slice.
func TopN[T any](items []T, n int, metric func(T) float64) []T {
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric(sorted[i]) > metric(sorted[j])
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
