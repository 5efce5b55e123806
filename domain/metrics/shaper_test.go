package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver resolves from a fixed table, standing in for the real
// country-code lookup.
type stubResolver struct {
	codes map[string]string
}

func (r stubResolver) Resolve(name string) (string, bool) {
	code, ok := r.codes[name]
	return code, ok
}

func testResolver() stubResolver {
	return stubResolver{codes: map[string]string{
		"USA":     "USA",
		"Germany": "DEU",
		"Brazil":  "BRA",
		"global":  "GLB", // deliberately resolvable to prove exact-match aggregate split
	}}
}

func fv(v float64) *float64 { return &v }

func TestShapeMultiPeriodPivot(t *testing.T) {
	table := RawTable{
		Sheet:   "MAU Signals",
		Headers: []string{"Country", "Jan", "Feb"},
		Rows: [][]string{
			{"USA", "1,000", "1,100"},
			{"Global", "5,000", "5,200"},
		},
	}

	shaped := Shape(table, testResolver())

	require.Equal(t, ShapeMultiPeriod, shaped.Shape)
	assert.Equal(t, []string{"Jan", "Feb"}, shaped.Periods)

	require.Len(t, shaped.Records, 2)
	assert.Equal(t, NormalizedRecord{Country: "USA", Period: "Jan", Value: fv(1000), RegionCode: "USA"}, shaped.Records[0])
	assert.Equal(t, NormalizedRecord{Country: "USA", Period: "Feb", Value: fv(1100), RegionCode: "USA"}, shaped.Records[1])

	require.Len(t, shaped.Aggregates, 2)
	assert.Equal(t, AggregateRecord{Country: "Global", Period: "Jan", Value: fv(5000)}, shaped.Aggregates[0])
	assert.Equal(t, AggregateRecord{Country: "Global", Period: "Feb", Value: fv(5200)}, shaped.Aggregates[1])
}

func TestShapeSinglePeriodNoPivot(t *testing.T) {
	table := RawTable{
		Sheet:   "MAU Devices",
		Headers: []string{"Country", "March"},
		Rows: [][]string{
			{"USA", "500"},
			{"Germany", "250"},
		},
	}

	shaped := Shape(table, testResolver())

	require.Equal(t, ShapeSinglePeriod, shaped.Shape)
	assert.False(t, shaped.MultiPeriod())
	assert.Equal(t, []string{"March"}, shaped.Periods)

	require.Len(t, shaped.Records, 2)
	for _, rec := range shaped.Records {
		assert.Equal(t, "March", rec.Period)
	}
}

// A two-column table keeps its header as the period label even when the
// header does not look like a date.
func TestShapeSinglePeriodNonDateHeader(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Totals"},
		Rows:    [][]string{{"Brazil", "42"}},
	}

	shaped := Shape(table, testResolver())

	require.Len(t, shaped.Records, 1)
	assert.Equal(t, "Totals", shaped.Records[0].Period)
}

func TestShapeUnresolvableCountryDropped(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "March"},
		Rows:    [][]string{{"Unknownland", "500"}},
	}

	shaped := Shape(table, testResolver())

	assert.Empty(t, shaped.Records)
	assert.Empty(t, shaped.Aggregates)
}

func TestShapeUnparsableValueKeptAsMissing(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Jan", "Feb"},
		Rows:    [][]string{{"USA", "n/a", "1,100"}},
	}

	shaped := Shape(table, testResolver())

	require.Len(t, shaped.Records, 2)
	assert.Nil(t, shaped.Records[0].Value)
	assert.Equal(t, fv(1100), shaped.Records[1].Value)
}

func TestShapeThousandsSeparators(t *testing.T) {
	tests := []struct {
		cell string
		want float64
	}{
		{"1,234", 1234},
		{"1,234,567", 1234567},
		{"1234.5", 1234.5},
		{"  42 ", 42},
	}

	for _, test := range tests {
		table := RawTable{
			Headers: []string{"Country", "Jan"},
			Rows:    [][]string{{"USA", test.cell}},
		}
		shaped := Shape(table, testResolver())
		require.Len(t, shaped.Records, 1, "cell %q", test.cell)
		require.NotNil(t, shaped.Records[0].Value, "cell %q", test.cell)
		assert.Equal(t, test.want, *shaped.Records[0].Value, "cell %q", test.cell)
	}
}

// Aggregate matching is exact: lowercase or padded variants are ordinary
// country labels and go through resolution instead.
func TestShapeAggregateSplitIsExactMatch(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Jan"},
		Rows: [][]string{
			{"International", "10"},
			{"Global", "20"},
			{"global", "30"},
			{" Global ", "40"},
		},
	}

	shaped := Shape(table, testResolver())

	require.Len(t, shaped.Aggregates, 2)
	assert.Equal(t, "International", shaped.Aggregates[0].Country)
	assert.Equal(t, "Global", shaped.Aggregates[1].Country)

	// "global" resolves in the stub table, so it lands in the country set;
	// " Global " does not resolve and is dropped.
	require.Len(t, shaped.Records, 1)
	assert.Equal(t, "global", shaped.Records[0].Country)
}

// Every (data row, period column) pair is accounted for: it lands in the
// country set, the aggregate set, or is dropped by resolution.
func TestShapePivotConservesCells(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Jan", "Feb", "Mar"},
		Rows: [][]string{
			{"USA", "1", "2", "3"},
			{"Nowhere", "4", "5", "6"},
			{"International", "7", "8", "9"},
		},
	}

	shaped := Shape(table, testResolver())

	totalCells := len(table.Rows) * (len(table.Headers) - 1)
	dropped := totalCells - len(shaped.Records) - len(shaped.Aggregates)

	assert.Equal(t, 3, len(shaped.Records))    // USA across three periods
	assert.Equal(t, 3, len(shaped.Aggregates)) // International across three periods
	assert.Equal(t, 3, dropped)                // Nowhere across three periods
}

func TestShapeIdempotent(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Jan", "Feb"},
		Rows: [][]string{
			{"USA", "1,000", "1,100"},
			{"Global", "5,000", "bad"},
			{"Unknownland", "1", "2"},
		},
	}

	first := Shape(table, testResolver())
	second := Shape(table, testResolver())

	assert.Equal(t, first, second)
}

func TestShapeRaggedRows(t *testing.T) {
	table := RawTable{
		Headers: []string{"Country", "Jan", "Feb"},
		Rows: [][]string{
			{"USA", "100"}, // Feb cell absent
			{},
		},
	}

	shaped := Shape(table, testResolver())

	require.Len(t, shaped.Records, 2)
	assert.Equal(t, fv(100), shaped.Records[0].Value)
	assert.Nil(t, shaped.Records[1].Value)
}

func TestDetectShape(t *testing.T) {
	tests := []struct {
		headers []string
		want    TableShape
	}{
		{[]string{"Country", "Jan"}, ShapeSinglePeriod},
		{[]string{"Country", "Jan", "Feb"}, ShapeMultiPeriod},
		{[]string{"Country", "Jan", "Feb", "Mar"}, ShapeMultiPeriod},
	}

	for _, test := range tests {
		got := DetectShape(RawTable{Headers: test.headers})
		assert.Equal(t, test.want, got, "headers %v", test.headers)
	}
}
