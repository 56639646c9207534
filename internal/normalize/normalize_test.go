package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleNumber(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"turkish grouped", "1.234,56", f(1234.56)},
		{"us grouped", "1,234.56", f(1234.56)},
		{"dot group no decimal", "2.000", f(2000)},
		{"comma group no decimal", "2,000", f(2000)},
		{"comma decimal", "12,5", f(12.5)},
		{"dot decimal", "12.50", f(12.5)},
		{"plain integer", "42", f(42)},
		{"lira symbol", "₺1.234,56", f(1234.56)},
		{"currency code", "1.234,56 TL", f(1234.56)},
		{"negative grouped", "-1.234,56", f(-1234.56)},
		{"leading plus", "+12,5", f(12.5)},
		{"empty", "", nil},
		{"no digits", "TL ₺", nil},
		{"garbage", "abc", nil},
		{"ambiguous both, comma last", "1.23.456,7", f(123456.7)},
		{"ambiguous both, dot last", "1,23,456.7", f(123456.7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocaleNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Ayşe Yılmaz", Text("  Ayşe \t Yılmaz\n"))
	assert.Equal(t, "", Text("   "))
}

func TestTitleCase_TurkishI(t *testing.T) {
	assert.Equal(t, "Ayşe Yılmaz", TitleCase("AYŞE   YILMAZ"))
	assert.Equal(t, "İlhan Demir", TitleCase("İLHAN DEMİR"))
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, 3, Quantity("3"))
	assert.Equal(t, 0, Quantity(""))
	assert.Equal(t, 0, Quantity("yok"))
	assert.Equal(t, 0, Quantity("-2"))
	assert.Equal(t, 1250, Quantity("1.250"))
}

func TestDayFirstDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"slash day first", "05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"dot day first", "5.3.2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"iso", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"with time of day", "05/03/2024 14:33", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"two digit year", "5/3/24", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"spreadsheet serial", "45356", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"invalid day", "32/01/2024", time.Time{}, false},
		{"overflowing date", "31/02/2024", time.Time{}, false},
		{"not a date", "pending", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DayFirstDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsDateColumn(t *testing.T) {
	assert.True(t, IsDateColumn("Sipariş Tarihi"))
	assert.True(t, IsDateColumn("ETGB TARİHİ"))
	assert.True(t, IsDateColumn("delivery_date"))
	assert.False(t, IsDateColumn("Adet"))
}
