// Package excel loads metric workbooks with excelize.
package excel

import (
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"maudash/domain/metrics"
	"maudash/internal/errors"
)

// WorkbookReader reads an uploaded .xlsx workbook into raw tables, one per
// required metric sheet. A workbook missing either sheet is rejected whole;
// there is no partial result.
type WorkbookReader struct {
	filePath string
}

// NewWorkbookReader creates a reader for a stored workbook file.
func NewWorkbookReader(filePath string) *WorkbookReader {
	return &WorkbookReader{filePath: filePath}
}

// ReadTables reads every required sheet into a RawTable keyed by dataset.
func (r *WorkbookReader) ReadTables() (map[metrics.DatasetKey]metrics.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeIngestionError, errors.Wrap(err, "failed to open workbook"))
	}
	defer f.Close()
	log.Printf("[WorkbookReader] Workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	tables := make(map[metrics.DatasetKey]metrics.RawTable, len(metrics.DatasetKeys))
	for _, key := range metrics.DatasetKeys {
		table, err := r.readSheet(f, key.SheetName())
		if err != nil {
			return nil, err
		}
		tables[key] = table
	}

	return tables, nil
}

// readSheet reads one named sheet into a RawTable with trimmed cells.
func (r *WorkbookReader) readSheet(f *excelize.File, sheet string) (metrics.RawTable, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return metrics.RawTable{}, errors.SheetMissing(sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return metrics.RawTable{}, errors.WithCode(errors.CodeIngestionError, errors.Wrapf(err, "failed to read sheet %q", sheet))
	}

	if len(rows) == 0 {
		return metrics.RawTable{}, errors.IngestionError("sheet " + sheet + " has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	if len(headers) < 2 {
		return metrics.RawTable{}, errors.IngestionError("sheet " + sheet + " must have a Country column and at least one period column")
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		trimmed := make([]string, len(row))
		for j, cell := range row {
			trimmed[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, trimmed)
	}

	log.Printf("[WorkbookReader] Sheet %q read (%d columns, %d rows)", sheet, len(headers), len(dataRows))

	return metrics.RawTable{
		Sheet:   sheet,
		Headers: headers,
		Rows:    dataRows,
	}, nil
}
