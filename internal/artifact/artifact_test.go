package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_Table(t *testing.T) {
	a := FromTable(&Table{
		Columns: []string{"a", "b"},
		Rows: []Row{
			{"a": 1.0, "b": "x"},
			{"a": 2.0, "b": "y"},
		},
	})

	raw, err := a.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, decoded.IsTable())
	assert.Equal(t, a.Table.Columns, decoded.Table.Columns)
	assert.Equal(t, a.Table.Rows, decoded.Table.Rows)
}

func TestEncodeDecode_Value(t *testing.T) {
	a := FromValue(map[string]any{"mean": 3.5, "count": 2.0})

	raw, err := a.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.False(t, decoded.IsTable())
	assert.Equal(t, a.Value, decoded.Value)
}

func TestDecode_RejectsUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind":"blob"}`))
	assert.ErrorContains(t, err, "unknown kind 'blob'")

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestTableHelpers(t *testing.T) {
	tbl := &Table{Columns: []string{"a"}, Rows: []Row{{"a": 1.0}}}
	assert.Equal(t, 1, tbl.NumRows())
	assert.True(t, tbl.HasColumn("a"))
	assert.False(t, tbl.HasColumn("z"))
}

func TestAsNumber(t *testing.T) {
	for _, v := range []any{float64(4), float32(4), int(4), int32(4), int64(4)} {
		n, ok := AsNumber(v)
		require.True(t, ok, "value %T", v)
		assert.Equal(t, 4.0, n)
	}
	_, ok := AsNumber("4")
	assert.False(t, ok)
}
