package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnPlayer is the individual-table column FetchPlayerRecord matches on.
const ColumnPlayer = "Player"

// Record is one sheet row keyed by header. Values are float64, bool or string
// as decoded from the API; missing trailing cells are "".
type Record = map[string]any

// buildRecords applies "all records" semantics: the first row is the header,
// short rows are padded with "", and rows with no content are skipped.
// Columns with an empty header are ignored.
func buildRecords(values [][]any) []Record {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = CellString(cell)
	}

	records := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func isBlankRow(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(CellString(cell)) != "" {
			return false
		}
	}
	return true
}

// CellString renders a cell the way the sheet would display it.
// Whole floats print without a decimal point.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
