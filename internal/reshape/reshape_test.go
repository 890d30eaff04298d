package reshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-viewer/internal/models"
)

func regions(t *testing.T, names []string, values []float64) *models.Table {
	t.Helper()
	tbl, err := models.NewTable("geoName", names, models.NewNumericColumn("bitcoin", values))
	require.NoError(t, err)
	return tbl
}

func risingTopics(t *testing.T) *models.Table {
	t.Helper()
	tbl, err := models.NewTable("", []string{"0", "1", "2"},
		models.NewNumericColumn("value", []float64{5000, 450, 120}),
		models.NewTextColumn("formattedValue", []string{"Breakout", "+450%", "+120%"}),
		models.NewTextColumn("link", []string{"/t/2", "/t/3", "/t/4"}),
		models.NewTextColumn("topic_mid", []string{"/m/2", "/m/3", "/m/4"}),
		models.NewTextColumn("topic_title", []string{"Dogecoin", "Ethereum", "Coinbase"}),
		models.NewTextColumn("topic_type", []string{"Cryptocurrency", "Software", "Company"}),
	)
	require.NoError(t, err)
	return tbl
}

func risingQueries(t *testing.T) *models.Table {
	t.Helper()
	tbl, err := models.NewTable("", []string{"0", "1"},
		models.NewTextColumn("query", []string{"bitcoin etf", "bitcoin halving"}),
		models.NewNumericColumn("value", []float64{1200, 350}),
	)
	require.NoError(t, err)
	return tbl
}

func TestInterestOverTimeIsUnchanged(t *testing.T) {
	in, err := models.NewTable("date", []string{"2015-01-04", "2015-01-11"},
		models.NewNumericColumn("bitcoin", []float64{3, 4}),
		models.NewTextColumn("isPartial", []string{"False", "False"}),
	)
	require.NoError(t, err)

	out, err := InterestOverTime(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.NotSame(t, in, out)
}

func TestInterestByRegionKeepsTopFive(t *testing.T) {
	names := []string{"Austria", "Brazil", "Chile", "Denmark", "Estonia", "Finland", "Ghana", "Haiti"}
	values := []float64{12, 90, 33, 4, 71, 100, 57, 8}
	in := regions(t, names, values)

	out, err := InterestByRegion(in, "bitcoin")
	require.NoError(t, err)

	require.Equal(t, 5, out.Len())
	assert.Equal(t, []string{"Finland", "Brazil", "Estonia", "Ghana", "Chile"}, out.Index())

	got, err := out.Floats("bitcoin")
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1], got[i], "rows must be sorted descending")
	}

	original := make(map[string]float64, len(names))
	for i, n := range names {
		original[n] = values[i]
	}
	for i, key := range out.Index() {
		v, ok := original[key]
		require.True(t, ok, "row %q is not from the input", key)
		assert.Equal(t, v, got[i])
	}
}

func TestInterestByRegionWithFewerRowsReturnsAll(t *testing.T) {
	in := regions(t, []string{"Austria", "Brazil", "Chile"}, []float64{1, 3, 2})

	out, err := InterestByRegion(in, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.ElementsMatch(t, in.Index(), out.Index())
}

func TestInterestByRegionMissingTopic(t *testing.T) {
	in := regions(t, []string{"Austria"}, []float64{1})

	_, err := InterestByRegion(in, "ethereum")
	assert.ErrorIs(t, err, models.ErrColumnNotFound)
}

func TestRelatedTopics(t *testing.T) {
	in := risingTopics(t)

	out, err := RelatedTopics(in)
	require.NoError(t, err)

	for _, dropped := range relatedTopicsDropped {
		assert.False(t, out.HasColumn(dropped), "column %q should be dropped", dropped)
	}
	assert.Equal(t, "topic_title", out.IndexName())
	assert.Equal(t, []string{"Dogecoin Cryptocurrency", "Ethereum Software", "Coinbase Company"}, out.Index())
	assert.Equal(t, []string{"value"}, out.NumericColumns())

	titles, err := in.Column("topic_title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dogecoin", "Ethereum", "Coinbase"}, titles.Texts, "input must not change")
}

func TestRelatedTopicsMissingColumn(t *testing.T) {
	in, err := risingTopics(t).Drop("link")
	require.NoError(t, err)

	_, err = RelatedTopics(in)
	assert.ErrorIs(t, err, models.ErrColumnNotFound)
}

func TestRelatedQueries(t *testing.T) {
	out, err := RelatedQueries(risingQueries(t))
	require.NoError(t, err)

	assert.Equal(t, "query", out.IndexName())
	assert.Equal(t, []string{"bitcoin etf", "bitcoin halving"}, out.Index())
	assert.Equal(t, []string{"value"}, out.ColumnNames())

	values, err := out.Floats("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{1200, 350}, values)
}

func TestNilInputsFail(t *testing.T) {
	_, err := RelatedTopics(nil)
	assert.Error(t, err)
	_, err = RelatedQueries(nil)
	assert.Error(t, err)
	_, err = InterestByRegion(nil, "bitcoin")
	assert.Error(t, err)
	_, err = InterestOverTime(nil)
	assert.Error(t, err)
}

func TestReshapeIsIdempotent(t *testing.T) {
	topics := risingTopics(t)
	first, err := RelatedTopics(topics)
	require.NoError(t, err)
	second, err := RelatedTopics(topics)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	queries := risingQueries(t)
	q1, err := RelatedQueries(queries)
	require.NoError(t, err)
	q2, err := RelatedQueries(queries)
	require.NoError(t, err)
	assert.Equal(t, q1, q2)

	in := regions(t, []string{"a", "b", "c", "d", "e", "f"}, []float64{6, 5, 4, 3, 2, 1})
	r1, err := InterestByRegion(in, "bitcoin")
	require.NoError(t, err)
	r2, err := InterestByRegion(in, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
