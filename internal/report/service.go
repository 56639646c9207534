package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hasancagrigungor/ravla/internal/ingest"
)

const defaultTTL = 5 * time.Minute

// Service memoizes the pure aggregation functions per
// (report, table version, parameters) so repeated UI interactions with
// unchanged parameters do not recompute anything.
type Service struct {
	cache Cache
	ttl   time.Duration
}

func NewService(cache Cache) *Service {
	return &Service{cache: cache, ttl: defaultTTL}
}

func (s *Service) key(report, version string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, report, version)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, "|")
}

func (s *Service) BuyerSummaries(t *ingest.Table) []BuyerSummary {
	key := s.key("buyer_summary", t.Version)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]BuyerSummary)
	}
	out := BuyerSummaries(t.Rows, t.HasAmount)
	s.cache.Set(key, out, s.ttl)
	return out
}

func (s *Service) OrdersWithManyProducts(t *ingest.Table, threshold int, cmp Comparator) []OrderProducts {
	key := s.key("orders_many_products", t.Version, threshold, cmp)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]OrderProducts)
	}
	out := OrdersWithManyProducts(t.Rows, threshold, cmp)
	s.cache.Set(key, out, s.ttl)
	return out
}

func (s *Service) BuyersOverTotalQuantity(t *ingest.Table, minTotal int) []BuyerQuantity {
	key := s.key("buyers_over_qty", t.Version, minTotal)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]BuyerQuantity)
	}
	out := BuyersOverTotalQuantity(t.Rows, minTotal)
	s.cache.Set(key, out, s.ttl)
	return out
}

func (s *Service) SameProductAcrossOrders(t *ingest.Table, products []string, minOrders int) []BuyerProductOrders {
	key := s.key("same_product_orders", t.Version, strings.Join(products, ","), minOrders)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]BuyerProductOrders)
	}
	out := SameProductAcrossOrders(t.Rows, products, minOrders)
	s.cache.Set(key, out, s.ttl)
	return out
}

func (s *Service) FilterByDate(t *ingest.Table, opts FilterOptions) []ingest.Row {
	key := s.key("filter_by_date", t.Version,
		opts.DateRole,
		opts.From.Format("2006-01-02"),
		opts.To.Format("2006-01-02"),
		strings.Join(opts.Sources, ","),
		opts.MissingDate,
		opts.DedupeLatest,
	)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]ingest.Row)
	}
	out := FilterByDate(t.Rows, opts)
	s.cache.Set(key, out, s.ttl)
	return out
}
