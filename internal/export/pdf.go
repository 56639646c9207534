package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/hasancagrigungor/ravla/internal/report"
)

// PDFReport is the input of ReportPDF: a buyer summary table, the top
// products as a bar chart and daily totals as a line chart. Empty sections
// are skipped.
type PDFReport struct {
	Title        string
	Summaries    []report.BuyerSummary
	TopProducts  []report.ProductQuantity
	Distribution []report.DistributionBucket
	Daily        []report.DailyTotal
}

const (
	pageLeft  = 15.0
	pageRight = 195.0
)

// Turkish letters the core fonts' code page cannot represent fold to their
// ASCII base; ö, ü and ç survive as-is.
var turkishFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ş", "s", "Ş", "S",
)

// pdfText encodes UTF-8 strings for the built-in fonts without touching the
// filesystem. Runes outside the code page become '?'.
func pdfText() func(string) string {
	enc := charmap.Windows1252
	return func(s string) string {
		s = turkishFold.Replace(s)
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if e, ok := enc.EncodeRune(r); ok {
				b.WriteByte(e)
			} else {
				b.WriteByte('?')
			}
		}
		return b.String()
	}
}

// ReportPDF renders a one-document overview of the loaded dataset.
func ReportPDF(r PDFReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdfText()

	pdf.SetTitle(tr(r.Title), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(r.Summaries) > 0 {
		writeSummaryTable(pdf, tr, r.Summaries)
	}
	if len(r.TopProducts) > 0 {
		pdf.AddPage()
		writeBarChart(pdf, tr, r.TopProducts)
	}
	if len(r.Distribution) > 0 {
		writeDistributionTable(pdf, tr, r.Distribution)
	}
	if len(r.Daily) > 0 {
		pdf.AddPage()
		writeDailyChart(pdf, tr, r.Daily)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummaryTable(pdf *fpdf.Fpdf, tr func(string) string, rows []report.BuyerSummary) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 8, tr("Alıcı"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, tr("Sipariş"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, tr("Adet"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, tr("Tutar"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, s := range rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		amount := "-"
		if s.TotalAmount != nil {
			amount = fmt.Sprintf("%.2f", *s.TotalAmount)
		}
		pdf.CellFormat(70, 7, tr(s.Buyer), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.DistinctOrders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.TotalQuantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, amount, "1", 1, "R", false, 0, "")
	}
}

func writeBarChart(pdf *fpdf.Fpdf, tr func(string) string, products []report.ProductQuantity) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, tr("En Çok Satılan Ürünler"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(products) > 15 {
		products = products[:15]
	}
	max := 0
	for _, p := range products {
		if p.TotalQuantity > max {
			max = p.TotalQuantity
		}
	}
	if max == 0 {
		max = 1
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(68, 114, 196)
	barArea := pageRight - pageLeft - 70
	y := pdf.GetY()
	for _, p := range products {
		width := barArea * float64(p.TotalQuantity) / float64(max)
		pdf.SetXY(pageLeft, y)
		pdf.CellFormat(60, 6, tr(truncate(p.Product, 32)), "", 0, "L", false, 0, "")
		pdf.Rect(pageLeft+62, y+1, width, 4, "F")
		pdf.SetXY(pageLeft+64+width, y)
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", p.TotalQuantity), "", 0, "L", false, 0, "")
		y += 7
	}
	pdf.SetY(y)
}

func writeDistributionTable(pdf *fpdf.Fpdf, tr func(string) string, buckets []report.DistributionBucket) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, tr("Sipariş Başına Ürün Dağılımı"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, tr("Farklı Ürün Sayısı"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr("Sipariş"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range buckets {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		pdf.CellFormat(60, 7, fmt.Sprintf("%d", b.DistinctProducts), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", b.Orders), "1", 1, "R", false, 0, "")
	}
}

func writeDailyChart(pdf *fpdf.Fpdf, tr func(string) string, daily []report.DailyTotal) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, tr("Günlük Toplamlar"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	max := 0
	for _, d := range daily {
		if d.Quantity > max {
			max = d.Quantity
		}
	}
	if max == 0 {
		max = 1
	}

	top := pdf.GetY()
	height := 80.0
	bottom := top + height
	width := pageRight - pageLeft

	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(pageLeft, top, pageLeft, bottom)
	pdf.Line(pageLeft, bottom, pageRight, bottom)

	pdf.SetDrawColor(68, 114, 196)
	step := width
	if len(daily) > 1 {
		step = width / float64(len(daily)-1)
	}
	var prevX, prevY float64
	for i, d := range daily {
		x := pageLeft + float64(i)*step
		y := bottom - height*float64(d.Quantity)/float64(max)
		if i > 0 {
			pdf.Line(prevX, prevY, x, y)
		}
		prevX, prevY = x, y
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(90, 90, 90)
	first := daily[0].Date.Format("02.01.2006")
	last := daily[len(daily)-1].Date.Format("02.01.2006")
	pdf.SetXY(pageLeft, bottom+2)
	pdf.CellFormat(40, 5, first, "", 0, "L", false, 0, "")
	pdf.SetXY(pageRight-40, bottom+2)
	pdf.CellFormat(40, 5, last, "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
