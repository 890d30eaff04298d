package models

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("geoName",
		[]string{"Austria", "Brazil", "Chile", "Denmark", "Estonia", "Finland"},
		NewNumericColumn("bitcoin", []float64{40, 100, 40, 7, 63, 12}),
		NewTextColumn("geoCode", []string{"AT", "BR", "CL", "DK", "EE", "FI"}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTableRejectsMismatchedColumns(t *testing.T) {
	_, err := NewTable("date", []string{"a", "b"}, NewNumericColumn("x", []float64{1}))
	assert.Error(t, err)

	_, err = NewTable("date", []string{"a"},
		NewNumericColumn("x", []float64{1}),
		NewTextColumn("x", []string{"dup"}),
	)
	assert.Error(t, err)
}

func TestNLargestOrdersDescendingAndKeepsTies(t *testing.T) {
	out, err := regionTable(t).NLargest(3, "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, []string{"Brazil", "Estonia", "Austria"}, out.Index())
	values, err := out.Floats("bitcoin")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 63, 40}, values)

	codes, err := out.Column("geoCode")
	require.NoError(t, err)
	assert.Equal(t, []string{"BR", "EE", "AT"}, codes.Texts)
}

func TestNLargestWithFewerRowsReturnsAll(t *testing.T) {
	out, err := regionTable(t).NLargest(10, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 6, out.Len())
}

func TestNLargestRejectsTextColumn(t *testing.T) {
	_, err := regionTable(t).NLargest(2, "geoCode")
	assert.ErrorIs(t, err, ErrColumnNotNumeric)

	_, err = regionTable(t).NLargest(2, "ethereum")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDropAndSetIndex(t *testing.T) {
	tbl := regionTable(t)

	dropped, err := tbl.Drop("geoCode")
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin"}, dropped.ColumnNames())
	assert.Equal(t, []string{"bitcoin", "geoCode"}, tbl.ColumnNames(), "receiver must not change")

	_, err = tbl.Drop("link")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	indexed, err := tbl.SetIndex("geoCode")
	require.NoError(t, err)
	assert.Equal(t, "geoCode", indexed.IndexName())
	assert.Equal(t, []string{"AT", "BR", "CL", "DK", "EE", "FI"}, indexed.Index())
	assert.Equal(t, []string{"bitcoin"}, indexed.ColumnNames())
}

func TestConcatReplacesExistingColumnInPlace(t *testing.T) {
	tbl, err := NewTable("", []string{"0", "1"},
		NewTextColumn("topic_title", []string{"Bitcoin", "Ethereum"}),
		NewTextColumn("topic_type", []string{"Currency", "Software"}),
	)
	require.NoError(t, err)

	out, err := tbl.Concat("topic_title", "topic_title", "topic_type", " ")
	require.NoError(t, err)

	col, err := out.Column("topic_title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bitcoin Currency", "Ethereum Software"}, col.Texts)
	assert.Equal(t, []string{"topic_title", "topic_type"}, out.ColumnNames())
}

func TestWriteCSV(t *testing.T) {
	tbl, err := NewTable("date", []string{"2015-01-04", "2015-01-11"},
		NewNumericColumn("bitcoin", []float64{3, 4.5}),
		NewTextColumn("isPartial", []string{"False", "True"}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "date,bitcoin,isPartial\n2015-01-04,3,False\n2015-01-11,4.5,True\n", buf.String())
}
