// Package views computes chart-ready projections of shaped metric data.
// Every function is pure: (selections, shaped data) in, view out. Widget
// changes upstream just call these again; no state lives here.
package views

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"maudash/domain/metrics"
)

// MapPoint is one choropleth entry. Records with missing values are
// excluded; the map cannot color an unknown quantity.
type MapPoint struct {
	RegionCode string  `json:"region_code"`
	Country    string  `json:"country"`
	Value      float64 `json:"value"`
}

// TrendPoint is one period's value in a trend line. Value stays nil for
// missing observations so the line can show gaps.
type TrendPoint struct {
	Period string   `json:"period"`
	Value  *float64 `json:"value"`
}

// TrendSeries is one country's period-ordered trend line.
type TrendSeries struct {
	Country string       `json:"country"`
	Points  []TrendPoint `json:"points"`
}

// TrendSlope is the least-squares slope of one country's values over the
// period index.
type TrendSlope struct {
	Country string  `json:"country"`
	Slope   float64 `json:"slope"`
	Points  int     `json:"points"`
}

// Summary describes the present values of one period.
type Summary struct {
	Period  string  `json:"period"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Total   float64 `json:"total"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// ForPeriod filters country records to one period, preserving order.
func ForPeriod(records []metrics.NormalizedRecord, period string) []metrics.NormalizedRecord {
	filtered := make([]metrics.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if rec.Period == period {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// SortedByValue orders records by value descending. Missing values sort
// last, ties keep their input order.
func SortedByValue(records []metrics.NormalizedRecord) []metrics.NormalizedRecord {
	sorted := make([]metrics.NormalizedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Value, sorted[j].Value
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})
	return sorted
}

// TopCountries returns the n highest-valued records of one period.
func TopCountries(records []metrics.NormalizedRecord, period string, n int) []metrics.NormalizedRecord {
	present := make([]metrics.NormalizedRecord, 0, len(records))
	for _, rec := range ForPeriod(records, period) {
		if rec.Value != nil {
			present = append(present, rec)
		}
	}
	sorted := SortedByValue(present)
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// MapPoints projects one period onto choropleth entries.
func MapPoints(records []metrics.NormalizedRecord, period string) []MapPoint {
	points := make([]MapPoint, 0, len(records))
	for _, rec := range ForPeriod(records, period) {
		if rec.Value == nil {
			continue
		}
		points = append(points, MapPoint{
			RegionCode: rec.RegionCode,
			Country:    rec.Country,
			Value:      *rec.Value,
		})
	}
	return points
}

// Countries lists distinct country labels in first-seen order.
func Countries(records []metrics.NormalizedRecord) []string {
	seen := make(map[string]struct{}, len(records))
	countries := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Country]; ok {
			continue
		}
		seen[rec.Country] = struct{}{}
		countries = append(countries, rec.Country)
	}
	return countries
}

// Trends builds one period-ordered series per selected country. Countries
// with no records in the set are omitted.
func Trends(records []metrics.NormalizedRecord, periods []string, countries []string) []TrendSeries {
	byCountry := make(map[string]map[string]*float64, len(countries))
	for _, rec := range records {
		if byCountry[rec.Country] == nil {
			byCountry[rec.Country] = make(map[string]*float64, len(periods))
		}
		byCountry[rec.Country][rec.Period] = rec.Value
	}

	series := make([]TrendSeries, 0, len(countries))
	for _, country := range countries {
		values, ok := byCountry[country]
		if !ok {
			continue
		}
		points := make([]TrendPoint, 0, len(periods))
		for _, period := range periods {
			points = append(points, TrendPoint{Period: period, Value: values[period]})
		}
		series = append(series, TrendSeries{Country: country, Points: points})
	}
	return series
}

// AggregateTrends builds series for the International/Global rollup rows.
func AggregateTrends(aggregates []metrics.AggregateRecord, periods []string) []TrendSeries {
	records := make([]metrics.NormalizedRecord, len(aggregates))
	for i, agg := range aggregates {
		records[i] = metrics.NormalizedRecord{Country: agg.Country, Period: agg.Period, Value: agg.Value}
	}
	return Trends(records, periods, Countries(records))
}

// SortedAggregates orders aggregate records by value descending, missing last.
func SortedAggregates(aggregates []metrics.AggregateRecord) []metrics.AggregateRecord {
	sorted := make([]metrics.AggregateRecord, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Value, sorted[j].Value
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})
	return sorted
}

// TrendSlopes fits a least-squares line per selected country over the
// period index. Countries with fewer than two present values are omitted;
// a line needs two points.
func TrendSlopes(records []metrics.NormalizedRecord, periods []string, countries []string) []TrendSlope {
	periodIndex := make(map[string]int, len(periods))
	for i, period := range periods {
		periodIndex[period] = i
	}

	slopes := make([]TrendSlope, 0, len(countries))
	for _, series := range Trends(records, periods, countries) {
		var xs, ys []float64
		for _, point := range series.Points {
			if point.Value == nil {
				continue
			}
			xs = append(xs, float64(periodIndex[point.Period]))
			ys = append(ys, *point.Value)
		}
		if len(xs) < 2 {
			continue
		}
		_, beta := stat.LinearRegression(xs, ys, nil, false)
		slopes = append(slopes, TrendSlope{Country: series.Country, Slope: beta, Points: len(xs)})
	}
	return slopes
}

// Summarize computes summary statistics over one period's present values.
// An empty period yields a zero-count summary, not an error.
func Summarize(records []metrics.NormalizedRecord, period string) Summary {
	summary := Summary{Period: period}

	var present []float64
	for _, rec := range ForPeriod(records, period) {
		if rec.Value == nil {
			summary.Missing++
			continue
		}
		present = append(present, *rec.Value)
	}

	summary.Count = len(present)
	if summary.Count == 0 {
		return summary
	}

	// Errors only fire on empty input, which is excluded above.
	summary.Total, _ = stats.Sum(present)
	summary.Mean, _ = stats.Mean(present)
	summary.Median, _ = stats.Median(present)
	summary.Min, _ = stats.Min(present)
	summary.Max, _ = stats.Max(present)
	return summary
}
