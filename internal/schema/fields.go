// Package schema reconciles the header spellings of different marketplace
// exports into one canonical column set.
package schema

// Canonical field names the rest of the pipeline depends on. Source files
// never use these directly; the alias table maps their headers here.
const (
	FieldOrderID        = "order_id"
	FieldPackageID      = "package_id"
	FieldBuyer          = "buyer"
	FieldProduct        = "product"
	FieldQuantity       = "quantity"
	FieldAmount         = "amount"
	FieldUnitPrice      = "unit_price"
	FieldRegion         = "region"
	FieldSubRegion      = "sub_region"
	FieldAddress        = "address"
	FieldBillingAddress = "billing_address"
	FieldOrderDate      = "order_date"
	FieldDueDate        = "due_date"
	FieldHandoverDate   = "handover_date"
	FieldDeliveryDate   = "delivery_date"
	FieldEtgbDate       = "etgb_date"
	FieldStatus         = "status"
	FieldCarrier        = "carrier"
	FieldTrackingNo     = "tracking_no"
	FieldStockCode      = "stock_code"
	FieldPlatformCode   = "platform_code"
	FieldDesi           = "desi"
	FieldCommission     = "commission"
	FieldCommissionRate = "commission_rate"
	FieldEmail          = "email"
	FieldEtgbNo         = "etgb_no"
	FieldInternational  = "international"

	// FieldSource is attached by the ingestion pipeline, never aliased.
	FieldSource = "source"
)

// FieldAliases lists the acceptable header spellings for one canonical field,
// in priority order: the first spelling found in a file wins.
type FieldAliases struct {
	Field      string
	Alternates []string
}

// AliasTable is the ordered alias declaration for all canonical fields.
type AliasTable []FieldAliases

// Alternates returns the declared spellings for a field, nil when unknown.
func (t AliasTable) Alternates(field string) []string {
	for _, fa := range t {
		if fa.Field == field {
			return append([]string(nil), fa.Alternates...)
		}
	}
	return nil
}

// Extend appends extra spellings to a field, adding the field when absent.
// Existing alternates keep their priority.
func (t AliasTable) Extend(field string, alternates ...string) AliasTable {
	for i, fa := range t {
		if fa.Field == field {
			t[i].Alternates = append(fa.Alternates, alternates...)
			return t
		}
	}
	return append(t, FieldAliases{Field: field, Alternates: alternates})
}

// DefaultAliases returns the shipped alias table covering Trendyol and
// Hepsiburada export headers. Callers get a copy and may extend it freely.
//
// "Müşteri Sipariş Adedi" is deliberately absent: the column is a platform
// pre-aggregate and every metric here is recomputed from line items.
func DefaultAliases() AliasTable {
	src := AliasTable{
		{FieldOrderID, []string{"Sipariş Numarası", "Sipariş No"}},
		{FieldPackageID, []string{"Paket Numarası", "Paket No"}},
		{FieldBuyer, []string{"Alıcı"}},
		{FieldProduct, []string{"Ürün Adı"}},
		{FieldQuantity, []string{"Adet"}},
		{FieldAmount, []string{"Faturalandırılacak Birim Satış Fiyatı", "Faturalandırılacak Satış Fiyatı", "Satış Tutarı", "Faturalanacak Tutar"}},
		{FieldUnitPrice, []string{"Birim Listeleme Fiyatı", "Birim Fiyatı"}},
		{FieldRegion, []string{"Şehir", "İl"}},
		{FieldSubRegion, []string{"Semt", "İlçe"}},
		{FieldAddress, []string{"Teslimat Adresi"}},
		{FieldBillingAddress, []string{"Fatura Adresi"}},
		{FieldOrderDate, []string{"Sipariş Tarihi"}},
		{FieldDueDate, []string{"Kargoya Son Teslim Tarihi", "Termin Süresinin Bittiği Tarih"}},
		{FieldHandoverDate, []string{"Kargo Kabul Tarihi", "Kargoya Teslim Tarihi"}},
		{FieldDeliveryDate, []string{"Teslim Tarihi"}},
		{FieldEtgbDate, []string{"ETGB Tarihi ", "ETGB Tarihi"}},
		{FieldStatus, []string{"Paket Durumu", "Sipariş Statüsü"}},
		{FieldCarrier, []string{"Kargo Firması"}},
		{FieldTrackingNo, []string{"Kargo Takip No", "Kargo Kodu"}},
		{FieldStockCode, []string{"Satıcı Stok Kodu", "Stok Kodu"}},
		{FieldPlatformCode, []string{"Hepsiburada Ürün Kodu"}},
		{FieldDesi, []string{"Desi", "Kargodan alınan desi", "Hesapladığım desi"}},
		{FieldCommission, []string{"Komisyon Tutarı (KDV Dahil)", "HB alacağı net Komisyon Tutarı (KDV dahil)"}},
		{FieldCommissionRate, []string{"Komisyon Oranı"}},
		{FieldEmail, []string{"Alıcı Mail Adresi", "E-Posta"}},
		{FieldEtgbNo, []string{"ETGB Numarası", "ETGB No"}},
		{FieldInternational, []string{"Uluslararası Sipariş mi?", "Mikro İhracat"}},
	}

	out := make(AliasTable, len(src))
	for i, fa := range src {
		out[i] = FieldAliases{
			Field:      fa.Field,
			Alternates: append([]string(nil), fa.Alternates...),
		}
	}
	return out
}
