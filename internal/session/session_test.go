package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasancagrigungor/ravla/internal/domain/frame"
	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/schema"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()
	raw := frame.New([]string{"a"}, [][]string{{"1"}})

	s := m.Create("orders.csv", raw, &ingest.Table{Version: "v1"})
	require.NotEmpty(t, s.ID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", got.FileName)
	assert.Equal(t, "v1", got.Table.Version)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager()

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ReplaceClearsBindings(t *testing.T) {
	m := NewManager()
	s := m.Create("old.csv", nil, &ingest.Table{Version: "v1"})
	s.Bind("buyer_report", schema.FieldBuyer, "Alıcı Adı")

	got, err := m.Replace(s.ID, "new.csv", nil, &ingest.Table{Version: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "new.csv", got.FileName)
	assert.Equal(t, "v2", got.Table.Version)
	assert.Empty(t, got.Binding("buyer_report"))
}

func TestManager_ReplaceUnknown(t *testing.T) {
	m := NewManager()

	_, err := m.Replace("nope", "f.csv", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_BindAccumulates(t *testing.T) {
	m := NewManager()
	s := m.Create("orders.csv", nil, nil)

	s.Bind("dates", schema.FieldOrderDate, "Sipariş Tarihi")
	s.Bind("dates", schema.FieldDueDate, "Termin")

	b := s.Binding("dates")
	assert.Equal(t, "Sipariş Tarihi", b[schema.FieldOrderDate])
	assert.Equal(t, "Termin", b[schema.FieldDueDate])
	assert.Empty(t, s.Binding("other"))
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	s := m.Create("orders.csv", nil, nil)

	m.Delete(s.ID)
	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
