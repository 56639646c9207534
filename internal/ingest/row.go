package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/hasancagrigungor/ravla/internal/domain/frame"
	"github.com/hasancagrigungor/ravla/internal/normalize"
	"github.com/hasancagrigungor/ravla/internal/schema"
)

// Row is one order line item after coercion. Quantity is never negative and
// Amount is nil whenever the source value did not parse; neither coercion can
// fail loudly.
type Row struct {
	OrderID   string
	Buyer     string
	Product   string
	Quantity  int
	Amount    *float64
	Region    string
	SubRegion string
	Address   string
	Source    string

	// Dates holds every parsed date column keyed by its column name
	// (canonical roles like schema.FieldDueDate, or the original header for
	// unaliased date columns). Absent key = unparseable or empty.
	Dates map[string]time.Time

	// Extra carries source-specific columns that have no typed field.
	Extra map[string]string
}

// Date returns the parsed value of a date column, false when null.
func (r Row) Date(role string) (time.Time, bool) {
	t, ok := r.Dates[role]
	return t, ok
}

// Table is the unified result of one ingestion run.
type Table struct {
	Rows []Row

	// HasAmount reports whether any input contributed an amount column.
	HasAmount bool
	// DateRoles lists the date columns present, sorted.
	DateRoles []string
	// Sources lists the distinct source tags in first-seen order.
	Sources []string
	// Warnings collects per-file skip messages; never fatal on their own.
	Warnings []string

	// Version is a content hash identifying this table for memoization.
	Version string
}

// typed columns consumed into Row fields rather than Extra
var typedColumns = map[string]bool{
	schema.FieldOrderID:   true,
	schema.FieldBuyer:     true,
	schema.FieldProduct:   true,
	schema.FieldQuantity:  true,
	schema.FieldAmount:    true,
	schema.FieldRegion:    true,
	schema.FieldSubRegion: true,
	schema.FieldAddress:   true,
	schema.FieldSource:    true,
}

// BuildTable coerces a unified frame into typed rows. Callers rebuilding a
// view after a manual column binding go through here too.
func BuildTable(f *frame.Frame, warnings []string) *Table {
	t := &Table{Warnings: warnings}
	if f == nil {
		return t
	}

	dateCols := make([]string, 0)
	for _, c := range f.Columns {
		if normalize.IsDateColumn(c) {
			dateCols = append(dateCols, c)
		}
	}
	sort.Strings(dateCols)

	t.HasAmount = f.Has(schema.FieldAmount)
	t.DateRoles = dateCols

	seenSource := map[string]bool{}
	t.Rows = make([]Row, 0, f.Len())

	for i := 0; i < f.Len(); i++ {
		row := Row{
			OrderID:   normalize.Text(f.Value(i, schema.FieldOrderID)),
			Buyer:     normalize.TitleCase(f.Value(i, schema.FieldBuyer)),
			Product:   normalize.Text(f.Value(i, schema.FieldProduct)),
			Quantity:  normalize.Quantity(f.Value(i, schema.FieldQuantity)),
			Region:    normalize.Text(f.Value(i, schema.FieldRegion)),
			SubRegion: normalize.Text(f.Value(i, schema.FieldSubRegion)),
			Address:   normalize.Text(f.Value(i, schema.FieldAddress)),
			Source:    normalize.Text(f.Value(i, schema.FieldSource)),
		}
		if t.HasAmount {
			row.Amount = normalize.LocaleNumber(f.Value(i, schema.FieldAmount))
		}

		for _, c := range dateCols {
			if d, ok := normalize.DayFirstDate(f.Value(i, c)); ok {
				if row.Dates == nil {
					row.Dates = make(map[string]time.Time, len(dateCols))
				}
				row.Dates[c] = d
			}
		}

		for _, c := range f.Columns {
			if typedColumns[c] || normalize.IsDateColumn(c) {
				continue
			}
			v := normalize.Text(f.Value(i, c))
			if v == "" {
				continue
			}
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[c] = v
		}

		if row.Source != "" && !seenSource[row.Source] {
			seenSource[row.Source] = true
			t.Sources = append(t.Sources, row.Source)
		}
		t.Rows = append(t.Rows, row)
	}

	t.Version = hashFrame(f)
	return t
}

// hashFrame derives a content address for the unified table so aggregate
// results can be cached per (table version, parameters).
func hashFrame(f *frame.Frame) string {
	h := sha256.New()
	for _, c := range f.Columns {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, rec := range f.Records {
		for _, v := range rec {
			h.Write([]byte(v))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
