package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hasancagrigungor/ravla/internal/schema"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

func newTestService() *Service {
	return NewService(schema.DefaultAliases(), ";", logger.NewNop())
}

func TestIngestDelimited_PrimaryDelimiter(t *testing.T) {
	data := strings.Join([]string{
		"Sipariş Numarası;Alıcı;Ürün Adı;Adet;Faturalanacak Tutar;Sipariş Tarihi",
		"100;ayşe yılmaz;Kalem;2;1.234,56;05/03/2024",
		"101;MEHMET KAYA;Defter;bozuk;;06/03/2024",
	}, "\n")

	res, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "trendyol_mart.csv", Data: []byte(data)},
	})
	require.NoError(t, err)
	table := res.Table
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "100", first.OrderID)
	assert.Equal(t, "Ayşe Yılmaz", first.Buyer)
	assert.Equal(t, 2, first.Quantity)
	require.NotNil(t, first.Amount)
	assert.InDelta(t, 1234.56, *first.Amount, 1e-9)
	assert.Equal(t, "trendyol", first.Source)

	d, ok := first.Date(schema.FieldOrderDate)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	// value-level failures degrade, never raise
	second := table.Rows[1]
	assert.Equal(t, 0, second.Quantity)
	assert.Nil(t, second.Amount)

	assert.True(t, table.HasAmount)
	assert.Equal(t, []string{"trendyol"}, table.Sources)
}

func TestIngestDelimited_SniffsWrongDelimiter(t *testing.T) {
	// comma-separated while the service assumes ';'
	data := "Sipariş Numarası,Alıcı,Adet\n100,ali,3\n"

	res, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "orders.csv", Data: []byte(data)},
	})
	require.NoError(t, err)
	table := res.Table
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "100", table.Rows[0].OrderID)
	assert.Equal(t, 3, table.Rows[0].Quantity)
	// no platform keyword: bare file name becomes the tag
	assert.Equal(t, "orders", table.Rows[0].Source)
}

func TestIngestDelimited_SkipsUnusableFile(t *testing.T) {
	good := "Sipariş Numarası;Adet\n1;2\n"
	bad := "foo;bar\nx;y\n"

	res, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "bad.csv", Data: []byte(bad)},
		{Name: "good.csv", Data: []byte(good)},
	})
	require.NoError(t, err)
	table := res.Table
	assert.Len(t, table.Rows, 1)
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "bad.csv")
}

func TestIngestDelimited_AllFilesUnusable(t *testing.T) {
	_, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "a.csv", Data: []byte("foo;bar\n1;2\n")},
		{Name: "b.csv", Data: []byte("baz\n3\n")},
	})
	assert.ErrorIs(t, err, ErrNoUsableData)
}

func TestIngestDelimited_KeepsPlatformColumnsInExtra(t *testing.T) {
	data := "Sipariş Numarası;Butik Numarası\n100;77\n"

	res, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "t.csv", Data: []byte(data)},
	})
	require.NoError(t, err)
	table := res.Table
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "77", table.Rows[0].Extra["Butik Numarası"])
	// the raw frame keeps the original column for later manual bindings
	assert.True(t, res.Raw.Has("Butik Numarası"))
}

func TestIngestDelimited_BOMAndOrder(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Sipariş Numarası;Adet\n1;1\n")...)
	plain := []byte("Sipariş Numarası;Adet\n2;1\n")

	res, err := newTestService().IngestDelimited([]NamedFile{
		{Name: "first.csv", Data: withBOM},
		{Name: "second.csv", Data: plain},
	})
	require.NoError(t, err)
	table := res.Table
	require.Len(t, table.Rows, 2)
	// upload order then row order is preserved
	assert.Equal(t, "1", table.Rows[0].OrderID)
	assert.Equal(t, "2", table.Rows[1].OrderID)
}

func workbookBytes(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()
	wb := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, wb.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := wb.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestIngestWorkbook_UnionsSheets(t *testing.T) {
	data := workbookBytes(t, map[string][][]interface{}{
		"Mart": {
			{"Sipariş Numarası", "Alıcı", "Ürün Adı", "Adet"},
			{"100", "ayşe", "Kalem", "2"},
			{"", "", "", ""},
		},
		"Nisan": {
			{"Sipariş Numarası", "Alıcı", "Ürün Adı", "Adet"},
			{"200", "mehmet", "Defter", "1"},
		},
	})

	res, err := newTestService().IngestWorkbook(data)
	require.NoError(t, err)
	table := res.Table
	require.Len(t, table.Rows, 2)

	ids := []string{table.Rows[0].OrderID, table.Rows[1].OrderID}
	assert.ElementsMatch(t, []string{"100", "200"}, ids)
	// workbook flow does not mix sources, so rows stay untagged
	assert.Empty(t, table.Rows[0].Source)
}

func TestIngestWorkbook_NoMatchingColumns(t *testing.T) {
	data := workbookBytes(t, map[string][][]interface{}{
		"Sheet1": {
			{"foo", "bar"},
			{"1", "2"},
		},
	})

	_, err := newTestService().IngestWorkbook(data)
	assert.ErrorIs(t, err, ErrNoUsableData)
}

func TestTableVersion_TracksContent(t *testing.T) {
	svc := newTestService()
	a, err := svc.IngestDelimited([]NamedFile{{Name: "a.csv", Data: []byte("Sipariş Numarası;Adet\n1;2\n")}})
	require.NoError(t, err)
	b, err := svc.IngestDelimited([]NamedFile{{Name: "a.csv", Data: []byte("Sipariş Numarası;Adet\n1;3\n")}})
	require.NoError(t, err)
	same, err := svc.IngestDelimited([]NamedFile{{Name: "a.csv", Data: []byte("Sipariş Numarası;Adet\n1;2\n")}})
	require.NoError(t, err)

	assert.NotEqual(t, a.Table.Version, b.Table.Version)
	assert.Equal(t, a.Table.Version, same.Table.Version)
}

func TestSniffSource(t *testing.T) {
	assert.Equal(t, "trendyol", sniffSource("Trendyol_siparis_mart.csv"))
	assert.Equal(t, "hepsiburada", sniffSource("hb-export.csv"))
	assert.Equal(t, "orders", sniffSource("/tmp/orders.csv"))
	assert.Equal(t, "unknown", sniffSource(".csv"))
}
