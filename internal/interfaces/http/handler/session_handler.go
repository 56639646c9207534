package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/report"
	"github.com/hasancagrigungor/ravla/internal/schema"
	"github.com/hasancagrigungor/ravla/internal/session"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

type SessionHandler struct {
	sessions *session.Manager
	ingests  *ingest.Service
	reports  *report.Service
	log      logger.Logger
}

func NewSessionHandler(sessions *session.Manager, ingests *ingest.Service, reports *report.Service, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		ingests:  ingests,
		reports:  reports,
		log:      log,
	}
}

func isWorkbook(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// CreateSession ingests an upload and opens (or replaces) a session. A lone
// .xlsx file goes through the workbook flow; anything else is treated as
// delimited text files.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	var res *ingest.Result
	if len(files) == 1 && isWorkbook(files[0].Filename) {
		data, err := readUpload(files[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err = h.ingests.IngestWorkbook(data)
		if err != nil {
			h.ingestError(c, err)
			return
		}
	} else {
		named := make([]ingest.NamedFile, 0, len(files))
		for _, fh := range files {
			data, err := readUpload(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			named = append(named, ingest.NamedFile{Name: fh.Filename, Data: data})
		}
		res, err = h.ingests.IngestDelimited(named)
		if err != nil {
			h.ingestError(c, err)
			return
		}
	}

	fileName := files[0].Filename
	var sess *session.Session
	if id := c.PostForm("session_id"); id != "" {
		sess, err = h.sessions.Replace(id, fileName, res.Raw, res.Table)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	} else {
		sess = h.sessions.Create(fileName, res.Raw, res.Table)
	}

	h.log.Info("session loaded",
		logger.String("session_id", sess.ID),
		logger.Int("rows", len(res.Table.Rows)),
		logger.Int("warnings", len(res.Table.Warnings)),
	)
	c.JSON(http.StatusCreated, sessionPayload(sess))
}

func (h *SessionHandler) ingestError(c *gin.Context, err error) {
	// ErrNoUsableData and malformed uploads are both caller problems
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func sessionPayload(sess *session.Session) gin.H {
	t := sess.Table
	buyers := make(map[string]bool)
	orders := make(map[string]bool)
	products := make(map[string]bool)
	for _, r := range t.Rows {
		buyers[r.Buyer] = true
		orders[r.OrderID] = true
		products[r.Product] = true
	}
	return gin.H{
		"session_id":        sess.ID,
		"file_name":         sess.FileName,
		"rows":              len(t.Rows),
		"distinct_buyers":   len(buyers),
		"distinct_orders":   len(orders),
		"distinct_products": len(products),
		"has_amount":        t.HasAmount,
		"date_roles":        t.DateRoles,
		"sources":           t.Sources,
		"warnings":          t.Warnings,
		"version":           t.Version,
	}
}

// GetSession returns the quick metrics of a loaded dataset.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionPayload(sess))
}

func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

// viewTable projects the session's raw frame for one report page. Missing
// data blocks with 409; required fields that neither aliases nor bindings
// cover produce a 422 with the field list so the client can prompt for a
// binding.
func (h *SessionHandler) viewTable(c *gin.Context, sess *session.Session, page string, required ...string) (*ingest.Table, bool) {
	view, mapping, missing, err := schema.PrepareView(sess.Raw, required, sess.Binding(page))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(missing) > 0 {
		uerr := &schema.UnmappableFieldError{Fields: missing}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          uerr.Error(),
			"missing_fields": missing,
			"mapping":        mapping,
		})
		return nil, false
	}
	return ingest.BuildTable(view, nil), true
}

// PostBinding records a manual column assignment for one report page.
func (h *SessionHandler) PostBinding(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Page   string `json:"page" binding:"required"`
		Field  string `json:"field" binding:"required"`
		Column string `json:"column"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sess.Raw == nil {
		c.JSON(http.StatusConflict, gin.H{"error": schema.ErrMissingData.Error()})
		return
	}
	if req.Column != "" && !sess.Raw.Has(req.Column) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "column not present in the loaded data", "column": req.Column})
		return
	}

	sess.Bind(req.Page, req.Field, req.Column)
	c.JSON(http.StatusOK, gin.H{"page": req.Page, "bindings": sess.Binding(req.Page)})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BuyerSummary handles the per-buyer aggregate report.
func (h *SessionHandler) BuyerSummary(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	table, ok := h.viewTable(c, sess, "buyer_summary", schema.FieldBuyer)
	if !ok {
		return
	}

	out := h.reports.BuyerSummaries(table)

	if min := intQuery(c, "min_orders", 0); min > 0 {
		filtered := make([]report.BuyerSummary, 0, len(out))
		for _, s := range out {
			if s.DistinctOrders >= min {
				filtered = append(filtered, s)
			}
		}
		out = filtered
	}

	switch c.DefaultQuery("sort", "") {
	case "orders":
		out = report.TopN(out, len(out), func(s report.BuyerSummary) float64 { return float64(s.DistinctOrders) })
	case "quantity":
		out = report.TopN(out, len(out), func(s report.BuyerSummary) float64 { return float64(s.TotalQuantity) })
	case "amount":
		out = report.TopN(out, len(out), func(s report.BuyerSummary) float64 {
			if s.TotalAmount == nil {
				return 0
			}
			return *s.TotalAmount
		})
	}
	if top := intQuery(c, "top", 0); top > 0 && top < len(out) {
		out = out[:top]
	}

	c.JSON(http.StatusOK, gin.H{"buyers": out, "count": len(out)})
}

// MultiProductOrders lists orders whose distinct product count satisfies the
// comparator.
func (h *SessionHandler) MultiProductOrders(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	table, ok := h.viewTable(c, sess, "multi_product_orders", schema.FieldOrderID, schema.FieldProduct)
	if !ok {
		return
	}

	threshold := intQuery(c, "threshold", 2)
	cmp := report.Comparator(c.DefaultQuery("op", string(report.CmpGTE)))
	switch cmp {
	case report.CmpGTE, report.CmpEQ, report.CmpLTE, report.CmpGT:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown comparator", "op": string(cmp)})
		return
	}

	out := h.reports.OrdersWithManyProducts(table, threshold, cmp)
	c.JSON(http.StatusOK, gin.H{"orders": out, "count": len(out)})
}

// QuantityThreshold lists buyers whose summed quantity reaches the minimum.
func (h *SessionHandler) QuantityThreshold(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	table, ok := h.viewTable(c, sess, "quantity_threshold", schema.FieldBuyer, schema.FieldQuantity)
	if !ok {
		return
	}

	out := h.reports.BuyersOverTotalQuantity(table, intQuery(c, "min", 1))
	c.JSON(http.StatusOK, gin.H{"buyers": out, "count": len(out)})
}

// RepeatProducts lists buyers who bought the same product across multiple
// orders.
func (h *SessionHandler) RepeatProducts(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	table, ok := h.viewTable(c, sess, "repeat_products",
		schema.FieldBuyer, schema.FieldProduct, schema.FieldOrderID)
	if !ok {
		return
	}

	var products []string
	if raw := c.Query("products"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				products = append(products, p)
			}
		}
	}
	if len(products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products parameter is required"})
		return
	}

	out := h.reports.SameProductAcrossOrders(table, products, intQuery(c, "min", 2))
	c.JSON(http.StatusOK, gin.H{"buyers": out, "count": len(out)})
}

func parseDateParam(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type rowPayload struct {
	OrderID   string            `json:"order_id"`
	Buyer     string            `json:"buyer"`
	Product   string            `json:"product"`
	Quantity  int               `json:"quantity"`
	Amount    *float64          `json:"amount,omitempty"`
	Region    string            `json:"region,omitempty"`
	SubRegion string            `json:"sub_region,omitempty"`
	Source    string            `json:"source,omitempty"`
	Dates     map[string]string `json:"dates,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func rowPayloads(rows []ingest.Row) []rowPayload {
	out := make([]rowPayload, len(rows))
	for i, r := range rows {
		p := rowPayload{
			OrderID:   r.OrderID,
			Buyer:     r.Buyer,
			Product:   r.Product,
			Quantity:  r.Quantity,
			Amount:    r.Amount,
			Region:    r.Region,
			SubRegion: r.SubRegion,
			Source:    r.Source,
			Extra:     r.Extra,
		}
		if len(r.Dates) > 0 {
			p.Dates = make(map[string]string, len(r.Dates))
			for role, d := range r.Dates {
				p.Dates[role] = d.Format("2006-01-02")
			}
		}
		out[i] = p
	}
	return out
}

// FilteredRows returns the rows inside an inclusive date range on the chosen
// date column, optionally restricted by source and deduplicated per order.
// With missing=true it returns the rows whose chosen date is empty instead,
// and from/to are not expected.
func (h *SessionHandler) FilteredRows(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	role := c.Query("date_role")
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_role parameter is required"})
		return
	}
	missing := c.Query("missing") == "true"
	var from, to time.Time
	if !missing {
		var okFrom, okTo bool
		from, okFrom = parseDateParam(c.Query("from"))
		to, okTo = parseDateParam(c.Query("to"))
		if !okFrom || !okTo {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be dates (2006-01-02 or 02.01.2006)"})
			return
		}
	}

	table, ok := h.viewTable(c, sess, "filtered", role)
	if !ok {
		return
	}

	opts := report.FilterOptions{
		DateRole:     role,
		From:         from,
		To:           to,
		MissingDate:  missing,
		DedupeLatest: c.Query("dedupe") == "true",
	}
	if raw := c.Query("sources"); raw != "" {
		opts.Sources = strings.Split(raw, ",")
	}

	rows := h.reports.FilterByDate(table, opts)
	c.JSON(http.StatusOK, gin.H{"rows": rowPayloads(rows), "count": len(rows)})
}

// ProductBreakdown sums quantities per product, splitting slash-separated
// sub-products, optionally restricted to specific days of a date column.
func (h *SessionHandler) ProductBreakdown(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	required := []string{schema.FieldProduct, schema.FieldQuantity}
	role := c.Query("date_role")
	if role != "" {
		required = append(required, role)
	}
	table, ok := h.viewTable(c, sess, "product_breakdown", required...)
	if !ok {
		return
	}

	rows := table.Rows
	if role != "" && c.Query("dates") != "" {
		wanted := make(map[time.Time]bool)
		for _, s := range strings.Split(c.Query("dates"), ",") {
			d, ok := parseDateParam(strings.TrimSpace(s))
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be 2006-01-02 or 02.01.2006", "value": s})
				return
			}
			wanted[d] = true
		}
		kept := make([]ingest.Row, 0, len(rows))
		for _, r := range rows {
			if d, ok := r.Date(role); ok && wanted[d] {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	out := report.ProductBreakdown(rows)
	c.JSON(http.StatusOK, gin.H{
		"products":           out.Products,
		"full_assigned_rows": out.FullAssignedRows,
	})
}
