package metrics

// DatasetKey identifies one of the two metric datasets in an uploaded workbook.
type DatasetKey string

const (
	DatasetSignals DatasetKey = "signals"
	DatasetDevices DatasetKey = "devices"
)

// SheetName returns the workbook sheet a dataset is read from.
func (k DatasetKey) SheetName() string {
	switch k {
	case DatasetSignals:
		return "MAU Signals"
	case DatasetDevices:
		return "MAU Devices"
	default:
		return ""
	}
}

// IsValid reports whether the key names a known dataset.
func (k DatasetKey) IsValid() bool {
	return k == DatasetSignals || k == DatasetDevices
}

// DatasetKeys lists the datasets every workbook must carry.
var DatasetKeys = []DatasetKey{DatasetSignals, DatasetDevices}

// RawTable is one sheet as read from the uploaded workbook: a Country
// column followed by one or more period columns.
type RawTable struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

// TableShape distinguishes the two column layouts a sheet can have.
type TableShape string

const (
	// ShapeSinglePeriod is Country plus exactly one period column. The
	// column header becomes the period label for every record and no
	// pivot happens.
	ShapeSinglePeriod TableShape = "single_period"

	// ShapeMultiPeriod is Country plus two or more period columns,
	// pivoted wide to long.
	ShapeMultiPeriod TableShape = "multi_period"
)

// DetectShape classifies a table by its column count. Called once per
// table; each shape has its own transform path.
func DetectShape(t RawTable) TableShape {
	if len(t.Headers) > 2 {
		return ShapeMultiPeriod
	}
	return ShapeSinglePeriod
}

// NormalizedRecord is one country/period observation. Value is nil when
// the source cell did not parse as a number.
type NormalizedRecord struct {
	Country    string   `json:"country"`
	Period     string   `json:"period"`
	Value      *float64 `json:"value"`
	RegionCode string   `json:"region_code"`
}

// AggregateRecord is one observation for a non-country rollup row
// ("International" or "Global"). It carries no region code and is never
// plotted on the map.
type AggregateRecord struct {
	Country string   `json:"country"`
	Period  string   `json:"period"`
	Value   *float64 `json:"value"`
}

// ShapedTable is the normalized output for one sheet.
type ShapedTable struct {
	Records    []NormalizedRecord
	Aggregates []AggregateRecord
	Periods    []string
	Shape      TableShape
}

// MultiPeriod reports whether the table carries more than one period and
// therefore supports trend views.
func (s ShapedTable) MultiPeriod() bool {
	return s.Shape == ShapeMultiPeriod
}

// RegionResolver maps a country label to a standardized 3-letter code.
// Implementations are best-effort; ok is false when no match exists.
type RegionResolver interface {
	Resolve(name string) (code string, ok bool)
}

// aggregateLabels are the reserved non-country rollup labels. Matching is
// exact: "global" or " Global " fall through to region resolution.
var aggregateLabels = map[string]struct{}{
	"International": {},
	"Global":        {},
}

// IsAggregateLabel reports whether a country label names a rollup row.
func IsAggregateLabel(country string) bool {
	_, ok := aggregateLabels[country]
	return ok
}
