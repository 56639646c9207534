package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasancagrigungor/ravla/internal/report"
)

func TestReportPDF(t *testing.T) {
	total := 123.45
	in := PDFReport{
		Title: "Sipariş Raporu",
		Summaries: []report.BuyerSummary{
			{Buyer: "Ayşe Yılmaz", DistinctOrders: 2, TotalQuantity: 5, TotalAmount: &total},
			{Buyer: "Mehmet Can", DistinctOrders: 1, TotalQuantity: 1},
		},
		TopProducts: []report.ProductQuantity{
			{Product: "Kalem", TotalQuantity: 10},
			{Product: "Defter", TotalQuantity: 4},
		},
		Distribution: []report.DistributionBucket{
			{DistinctProducts: 1, Orders: 2},
			{DistinctProducts: 2, Orders: 1},
		},
		Daily: []report.DailyTotal{
			{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Rows: 2, Quantity: 5},
			{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Rows: 1, Quantity: 9},
		},
	}

	data, err := ReportPDF(in)

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestReportPDF_EmptySections(t *testing.T) {
	data, err := ReportPDF(PDFReport{Title: "Boş Rapor"})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFText(t *testing.T) {
	tr := pdfText()

	// letters missing from the core-font code page fold to ASCII
	assert.Equal(t, "Ayse Yilmaz", tr("Ayşe Yılmaz"))
	assert.Equal(t, "Siparis Dagilimi", tr("Sipariş Dağılımı"))

	// letters the code page carries keep their single-byte encoding
	assert.Equal(t, "G\xfcnl\xfck", tr("Günlük"))
	assert.Equal(t, "\xd6z\xe7an", tr("Özçan"))

	// anything else degrades instead of erroring
	assert.Equal(t, "?", tr("字"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "kısa", truncate("kısa", 10))
	assert.Equal(t, "uzun ürün…", truncate("uzun ürün adı burada", 10))
}
