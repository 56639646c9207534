package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/schema"
)

func amount(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func rowWithDate(orderID, buyer, product string, qty int, role string, d time.Time) ingest.Row {
	return ingest.Row{
		OrderID:  orderID,
		Buyer:    buyer,
		Product:  product,
		Quantity: qty,
		Dates:    map[string]time.Time{role: d},
	}
}

func TestBuyerSummaries_DedupesOrdersBeforeCounting(t *testing.T) {
	rows := []ingest.Row{
		{OrderID: "O1", Buyer: "Ayşe", Quantity: 1, Amount: amount(10)},
		{OrderID: "O1", Buyer: "Ayşe", Quantity: 2, Amount: amount(20)},
		{OrderID: "O1", Buyer: "Ayşe", Quantity: 3, Amount: nil},
		{OrderID: "O2", Buyer: "Ayşe", Quantity: 4, Amount: amount(5)},
		{OrderID: "O3", Buyer: "Mehmet", Quantity: 7, Amount: amount(1)},
	}

	out := BuyerSummaries(rows, true)
	require.Len(t, out, 2)

	ayse := out[0]
	assert.Equal(t, "Ayşe", ayse.Buyer)
	// 3 line items on O1 count as 1 order
	assert.Equal(t, 2, ayse.DistinctOrders)
	assert.Equal(t, 10, ayse.TotalQuantity)
	require.NotNil(t, ayse.TotalAmount)
	// nil amount excluded from the sum, not treated as zero-or-crash
	assert.InDelta(t, 35, *ayse.TotalAmount, 1e-9)

	// invariant: distinct orders never exceed raw row count per buyer
	assert.LessOrEqual(t, ayse.DistinctOrders, 4)
}

func TestBuyerSummaries_NoAmountColumn(t *testing.T) {
	rows := []ingest.Row{{OrderID: "O1", Buyer: "Ayşe", Quantity: 1}}

	out := BuyerSummaries(rows, false)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].TotalAmount)
}

func TestOrdersWithManyProducts(t *testing.T) {
	// order A has {X, X, Y}, order B has {Z}
	rows := []ingest.Row{
		{OrderID: "A", Product: "X"},
		{OrderID: "A", Product: "X"},
		{OrderID: "A", Product: "Y"},
		{OrderID: "B", Product: "Z"},
	}

	out := OrdersWithManyProducts(rows, 2, CmpGTE)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].OrderID)
	assert.Equal(t, 2, out[0].DistinctProducts)
}

func TestOrdersWithManyProducts_AllComparators(t *testing.T) {
	rows := []ingest.Row{
		{OrderID: "A", Product: "X"},
		{OrderID: "A", Product: "Y"},
		{OrderID: "B", Product: "Z"},
		{OrderID: "C", Product: "P"},
		{OrderID: "C", Product: "Q"},
		{OrderID: "C", Product: "R"},
	}

	tests := []struct {
		cmp  Comparator
		want []string
	}{
		{CmpGTE, []string{"A", "C"}},
		{CmpEQ, []string{"A"}},
		{CmpLTE, []string{"A", "B"}},
		{CmpGT, []string{"C"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmp), func(t *testing.T) {
			out := OrdersWithManyProducts(rows, 2, tt.cmp)
			ids := make([]string, len(out))
			for i, o := range out {
				ids[i] = o.OrderID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBuyersOverTotalQuantity_SortedDescending(t *testing.T) {
	rows := []ingest.Row{
		{OrderID: "O1", Buyer: "Ali", Quantity: 3},
		{OrderID: "O2", Buyer: "Veli", Quantity: 10},
		{OrderID: "O3", Buyer: "Ali", Quantity: 4},
		{OrderID: "O4", Buyer: "Can", Quantity: 1},
	}

	out := BuyersOverTotalQuantity(rows, 5)
	require.Len(t, out, 2)
	assert.Equal(t, "Veli", out[0].Buyer)
	assert.Equal(t, 10, out[0].TotalQuantity)
	assert.Equal(t, "Ali", out[1].Buyer)
	assert.Equal(t, 7, out[1].TotalQuantity)
}

func TestSameProductAcrossOrders_DedupesTriples(t *testing.T) {
	// Kalem appears twice in O1 and once in O2: distinct orders = 2, not 3
	rows := []ingest.Row{
		{OrderID: "O1", Buyer: "Ayşe", Product: "Kalem"},
		{OrderID: "O1", Buyer: "Ayşe", Product: "Kalem"},
		{OrderID: "O2", Buyer: "Ayşe", Product: "Kalem"},
		{OrderID: "O3", Buyer: "Ayşe", Product: "Defter"},
	}

	out := SameProductAcrossOrders(rows, []string{"Kalem"}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "Ayşe", out[0].Buyer)
	assert.Equal(t, "Kalem", out[0].Product)
	assert.Equal(t, 2, out[0].DistinctOrders)
}

func TestSameProductAcrossOrders_SortOrder(t *testing.T) {
	rows := []ingest.Row{
		{OrderID: "O1", Buyer: "Zeynep", Product: "Kalem"},
		{OrderID: "O2", Buyer: "Zeynep", Product: "Kalem"},
		{OrderID: "O3", Buyer: "Ali", Product: "Kalem"},
		{OrderID: "O4", Buyer: "Ali", Product: "Kalem"},
	}

	out := SameProductAcrossOrders(rows, []string{"Kalem"}, 2)
	require.Len(t, out, 2)
	// equal counts: buyer ascending breaks the tie
	assert.Equal(t, "Ali", out[0].Buyer)
	assert.Equal(t, "Zeynep", out[1].Buyer)
}

func TestFilterByDate_RangeAndSources(t *testing.T) {
	role := schema.FieldOrderDate
	rows := []ingest.Row{
		rowWithDate("O1", "a", "p", 1, role, day(1)),
		rowWithDate("O2", "a", "p", 1, role, day(5)),
		rowWithDate("O3", "a", "p", 1, role, day(9)),
		{OrderID: "O4", Buyer: "a"}, // null date must be excluded
	}
	rows[1].Source = "trendyol"
	rows[0].Source = "hepsiburada"

	got := FilterByDate(rows, FilterOptions{
		DateRole: role,
		From:     day(1),
		To:       day(5),
	})
	require.Len(t, got, 2) // inclusive range, null excluded

	got = FilterByDate(rows, FilterOptions{
		DateRole: role,
		From:     day(1),
		To:       day(9),
		Sources:  []string{"trendyol"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "O2", got[0].OrderID)
}

func TestFilterByDate_MissingDateKeepsNullRows(t *testing.T) {
	role := schema.FieldHandoverDate
	rows := []ingest.Row{
		rowWithDate("O1", "a", "p", 1, role, day(3)),
		{OrderID: "O2", Buyer: "a", Source: "trendyol"},
		{OrderID: "O3", Buyer: "b", Source: "hepsiburada"},
	}

	got := FilterByDate(rows, FilterOptions{DateRole: role, MissingDate: true})
	require.Len(t, got, 2)
	assert.Equal(t, "O2", got[0].OrderID)
	assert.Equal(t, "O3", got[1].OrderID)

	// the source allow-list still applies
	got = FilterByDate(rows, FilterOptions{
		DateRole:    role,
		MissingDate: true,
		Sources:     []string{"trendyol"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "O2", got[0].OrderID)
}

func TestFilterByDate_DedupeKeepsLatest(t *testing.T) {
	role := schema.FieldHandoverDate
	rows := []ingest.Row{
		rowWithDate("O1", "a", "p", 1, role, day(7)),
		rowWithDate("O1", "a", "p", 2, role, day(3)),
		rowWithDate("O2", "a", "p", 3, role, day(5)),
	}

	got := FilterByDate(rows, FilterOptions{
		DateRole:     role,
		From:         day(1),
		To:           day(31),
		DedupeLatest: true,
	})
	require.Len(t, got, 2)

	// ascending by date, later-dated O1 row retained
	assert.Equal(t, "O2", got[0].OrderID)
	assert.Equal(t, "O1", got[1].OrderID)
	assert.Equal(t, 1, got[1].Quantity)
}

func TestFilterByDate_DoesNotMutateInput(t *testing.T) {
	role := schema.FieldOrderDate
	rows := []ingest.Row{
		rowWithDate("O2", "a", "p", 1, role, day(9)),
		rowWithDate("O1", "a", "p", 1, role, day(1)),
	}

	_ = FilterByDate(rows, FilterOptions{DateRole: role, From: day(1), To: day(9), DedupeLatest: true})

	assert.Equal(t, "O2", rows[0].OrderID)
	assert.Equal(t, "O1", rows[1].OrderID)
}

func TestTopN_StableTies(t *testing.T) {
	items := []BuyerQuantity{
		{Buyer: "first", TotalQuantity: 5},
		{Buyer: "second", TotalQuantity: 5},
		{Buyer: "big", TotalQuantity: 9},
		{Buyer: "small", TotalQuantity: 1},
	}

	top := TopN(items, 3, func(b BuyerQuantity) float64 { return float64(b.TotalQuantity) })
	require.Len(t, top, 3)
	assert.Equal(t, "big", top[0].Buyer)
	// ties keep original order
	assert.Equal(t, "first", top[1].Buyer)
	assert.Equal(t, "second", top[2].Buyer)
}
