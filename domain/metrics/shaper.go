package metrics

import (
	"strconv"
	"strings"
)

// Shape transforms one raw sheet into its normalized long form.
//
// The pipeline is: pivot (or relabel, for single-period tables), split out
// aggregate rows on exact label match, resolve each remaining country to a
// region code and drop rows with no match, then coerce values to floats
// with unparsable cells kept as missing. Row-level failures never abort
// the transform; a few bad rows must not block the rest of the sheet.
func Shape(t RawTable, resolver RegionResolver) ShapedTable {
	shape := DetectShape(t)

	var long []longRow
	switch shape {
	case ShapeMultiPeriod:
		long = pivotWide(t)
	default:
		long = relabelSingle(t)
	}

	shaped := ShapedTable{
		Records:    []NormalizedRecord{},
		Aggregates: []AggregateRecord{},
		Periods:    periodLabels(t),
		Shape:      shape,
	}

	for _, row := range long {
		value := coerceValue(row.value)

		if IsAggregateLabel(row.country) {
			shaped.Aggregates = append(shaped.Aggregates, AggregateRecord{
				Country: row.country,
				Period:  row.period,
				Value:   value,
			})
			continue
		}

		code, ok := resolver.Resolve(row.country)
		if !ok {
			// Unresolvable names are dropped, not kept with a null code.
			continue
		}

		shaped.Records = append(shaped.Records, NormalizedRecord{
			Country:    row.country,
			Period:     row.period,
			Value:      value,
			RegionCode: code,
		})
	}

	return shaped
}

type longRow struct {
	country string
	period  string
	value   string
}

// pivotWide melts a multi-period table: each (country, period column) pair
// becomes one long row, in row-major source order.
func pivotWide(t RawTable) []longRow {
	periods := t.Headers[1:]
	long := make([]longRow, 0, len(t.Rows)*len(periods))

	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		country := row[0]
		for i, period := range periods {
			cell := ""
			if i+1 < len(row) {
				cell = row[i+1]
			}
			long = append(long, longRow{country: country, period: period, value: cell})
		}
	}
	return long
}

// relabelSingle handles the two-column layout: no pivot, the sole data
// column's header becomes the period label verbatim for every row.
func relabelSingle(t RawTable) []longRow {
	if len(t.Headers) < 2 {
		return nil
	}
	period := t.Headers[1]
	long := make([]longRow, 0, len(t.Rows))

	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		cell := ""
		if len(row) > 1 {
			cell = row[1]
		}
		long = append(long, longRow{country: row[0], period: period, value: cell})
	}
	return long
}

func periodLabels(t RawTable) []string {
	if len(t.Headers) < 2 {
		return []string{}
	}
	periods := make([]string, len(t.Headers)-1)
	copy(periods, t.Headers[1:])
	return periods
}

// coerceValue strips thousands separators and parses the cell as a float.
// Parse failures yield nil (missing) rather than an error.
func coerceValue(cell string) *float64 {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return nil
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
