package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasancagrigungor/ravla/internal/export"
	"github.com/hasancagrigungor/ravla/internal/report"
	"github.com/hasancagrigungor/ravla/internal/session"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export renders the session's standard report set in the requested format.
func (h *SessionHandler) Export(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if sess.Table == nil || len(sess.Table.Rows) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no data uploaded yet"})
		return
	}

	switch c.Param("format") {
	case "xlsx":
		h.exportXLSX(c, sess)
	case "csv":
		h.exportCSV(c, sess)
	case "pdf":
		h.exportPDF(c, sess)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown export format", "format": c.Param("format")})
	}
}

func formatAmount(a *float64) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *a)
}

func summarySheet(summaries []report.BuyerSummary) export.Sheet {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.Buyer,
			fmt.Sprintf("%d", s.DistinctOrders),
			fmt.Sprintf("%d", s.TotalQuantity),
			formatAmount(s.TotalAmount),
		}
	}
	return export.Sheet{
		Name:    "Alıcı Özeti",
		Columns: []string{"Alıcı", "Sipariş Sayısı", "Toplam Adet", "Toplam Tutar"},
		Rows:    rows,
	}
}

func breakdownSheet(b report.BreakdownResult) export.Sheet {
	rows := make([][]string, len(b.Products))
	for i, p := range b.Products {
		rows[i] = []string{p.Product, fmt.Sprintf("%d", p.TotalQuantity)}
	}
	return export.Sheet{
		Name:    "Ürün Dağılımı",
		Columns: []string{"Ürün", "Toplam Adet"},
		Rows:    rows,
	}
}

func distributionSheet(buckets []report.DistributionBucket) export.Sheet {
	rows := make([][]string, len(buckets))
	for i, b := range buckets {
		rows[i] = []string{
			fmt.Sprintf("%d", b.DistinctProducts),
			fmt.Sprintf("%d", b.Orders),
		}
	}
	return export.Sheet{
		Name:    "Sipariş Dağılımı",
		Columns: []string{"Farklı Ürün Sayısı", "Sipariş Sayısı"},
		Rows:    rows,
	}
}

func dailySheet(daily []report.DailyTotal) export.Sheet {
	rows := make([][]string, len(daily))
	for i, d := range daily {
		rows[i] = []string{
			d.Date.Format("02.01.2006"),
			fmt.Sprintf("%d", d.Rows),
			fmt.Sprintf("%d", d.Quantity),
		}
	}
	return export.Sheet{
		Name:    "Günlük Toplamlar",
		Columns: []string{"Tarih", "Satır", "Toplam Adet"},
		Rows:    rows,
	}
}

func (h *SessionHandler) exportXLSX(c *gin.Context, sess *session.Session) {
	t := sess.Table
	sheets := []export.Sheet{
		summarySheet(h.reports.BuyerSummaries(t)),
		breakdownSheet(report.ProductBreakdown(t.Rows)),
		distributionSheet(report.OrderProductDistribution(t.Rows)),
	}
	if len(t.DateRoles) > 0 {
		if daily := report.DailyTotals(t.Rows, t.DateRoles[0]); len(daily) > 0 {
			sheets = append(sheets, dailySheet(daily))
		}
	}

	data, err := export.WorkbookBytes(sheets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rapor.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

func (h *SessionHandler) exportCSV(c *gin.Context, sess *session.Session) {
	sheet := summarySheet(h.reports.BuyerSummaries(sess.Table))

	data, err := export.CSVBytes(sheet.Columns, sheet.Rows, ';')
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rapor.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *SessionHandler) exportPDF(c *gin.Context, sess *session.Session) {
	t := sess.Table
	breakdown := report.ProductBreakdown(t.Rows)
	in := export.PDFReport{
		Title:        fmt.Sprintf("Sipariş Raporu - %s", sess.FileName),
		Summaries:    h.reports.BuyerSummaries(t),
		TopProducts:  breakdown.Products,
		Distribution: report.OrderProductDistribution(t.Rows),
	}
	if len(t.DateRoles) > 0 {
		in.Daily = report.DailyTotals(t.Rows, t.DateRoles[0])
	}

	data, err := export.ReportPDF(in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rapor.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
