package leaderboard

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/validation"
)

// Table names used in warnings.
const (
	TableIndividual = "individual"
	TableTeam       = "team"
)

// Warning describes a problem found while decoding sheet rows. Row is the
// 1-based data row (header excluded); 0 means the whole table.
type Warning struct {
	Table   string `json:"table"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(w.Table)
	if w.Row > 0 {
		fmt.Fprintf(&b, " row %d", w.Row)
	}
	if w.Column != "" {
		fmt.Fprintf(&b, " %s", w.Column)
	}
	b.WriteString(": ")
	b.WriteString(w.Message)
	return b.String()
}

var (
	individualRequired = []string{ColumnRank, ColumnPlayer, ColumnTeam, ColumnTotal}
	teamRequired       = []string{ColumnRank, ColumnTeam, ColumnTotal, ColumnPlayers}
)

// Decoder coerces loose sheet records into typed rows.
type Decoder struct {
	validator *validation.Validator
}

// NewDecoder creates a decoder validating rows with v.
func NewDecoder(v *validation.Validator) *Decoder {
	return &Decoder{validator: v}
}

// DecodeIndividual turns individual-table records into rows. Rows that cannot
// be coerced are dropped with a warning; everything else keeps source order.
func (d *Decoder) DecodeIndividual(records []map[string]any) ([]IndividualRow, []Warning) {
	known := append(slices.Clone(individualRequired), RoundColumns()...)
	warnings := columnWarnings(TableIndividual, records, individualRequired, RoundColumns(), known)

	rows := make([]IndividualRow, 0, len(records))
	seen := make(map[string]int, len(records))
	prevRank := 0

	for i, rec := range records {
		rowNum := i + 1
		rank, rankErr := toRank(rec[ColumnRank])
		total, totalWarn := toTotal(rec[ColumnTotal])

		row := IndividualRow{
			Rank:   rank,
			Player: cellText(rec[ColumnPlayer]),
			Team:   cellText(rec[ColumnTeam]),
			Total:  total,
		}

		if dropped := d.rowProblems(TableIndividual, rowNum, row, rankErr, totalWarn, &warnings); dropped {
			continue
		}

		if first, dup := seen[row.Player]; dup {
			warnings = append(warnings, Warning{Table: TableIndividual, Row: rowNum, Column: ColumnPlayer,
				Message: fmt.Sprintf("duplicate player %q (first seen on row %d)", row.Player, first)})
		} else {
			seen[row.Player] = rowNum
		}

		if row.Rank < prevRank {
			warnings = append(warnings, Warning{Table: TableIndividual, Row: rowNum, Column: ColumnRank,
				Message: fmt.Sprintf("rank %d follows rank %d", row.Rank, prevRank)})
		}
		prevRank = row.Rank

		rows = append(rows, row)
	}

	return rows, warnings
}

// DecodeTeams turns team-table records into rows, same rules as DecodeIndividual.
func (d *Decoder) DecodeTeams(records []map[string]any) ([]TeamRow, []Warning) {
	warnings := columnWarnings(TableTeam, records, teamRequired, nil, teamRequired)

	rows := make([]TeamRow, 0, len(records))
	seen := make(map[string]int, len(records))
	prevRank := 0

	for i, rec := range records {
		rowNum := i + 1
		rank, rankErr := toRank(rec[ColumnRank])
		total, totalWarn := toTotal(rec[ColumnTotal])

		row := TeamRow{
			Rank:    rank,
			Team:    cellText(rec[ColumnTeam]),
			Total:   total,
			Players: cellText(rec[ColumnPlayers]),
		}

		if dropped := d.rowProblems(TableTeam, rowNum, row, rankErr, totalWarn, &warnings); dropped {
			continue
		}

		if first, dup := seen[row.Team]; dup {
			warnings = append(warnings, Warning{Table: TableTeam, Row: rowNum, Column: ColumnTeam,
				Message: fmt.Sprintf("duplicate team %q (first seen on row %d)", row.Team, first)})
		} else {
			seen[row.Team] = rowNum
		}

		if row.Rank < prevRank {
			warnings = append(warnings, Warning{Table: TableTeam, Row: rowNum, Column: ColumnRank,
				Message: fmt.Sprintf("rank %d follows rank %d", row.Rank, prevRank)})
		}
		prevRank = row.Rank

		rows = append(rows, row)
	}

	return rows, warnings
}

// rowProblems records coercion and validation warnings for one row and
// reports whether the row must be dropped. Only an unusable rank or a blank
// name drops a row; total problems are warnings.
func (d *Decoder) rowProblems(table string, rowNum int, row any, rankErr, totalWarn string, warnings *[]Warning) bool {
	drop := false

	if rankErr != "" {
		*warnings = append(*warnings, Warning{Table: table, Row: rowNum, Column: ColumnRank, Message: rankErr})
		drop = true
	}
	if totalWarn != "" {
		*warnings = append(*warnings, Warning{Table: table, Row: rowNum, Column: ColumnTotal, Message: totalWarn})
	}

	fields := d.validator.Fields(row)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		// Rank problems were already reported with a better message.
		if name == ColumnRank && rankErr != "" {
			continue
		}
		*warnings = append(*warnings, Warning{Table: table, Row: rowNum, Column: name, Message: name + " " + fields[name]})
		drop = true
	}

	return drop
}

// columnWarnings compares the header (the keys of the first record) against
// the columns the table should have.
func columnWarnings(table string, records []map[string]any, required, optional, known []string) []Warning {
	if len(records) == 0 {
		return nil
	}
	header := records[0]

	var warnings []Warning
	for _, col := range required {
		if _, ok := header[col]; !ok {
			warnings = append(warnings, Warning{Table: table, Column: col, Message: "required column missing"})
		}
	}
	for _, col := range optional {
		if _, ok := header[col]; !ok {
			warnings = append(warnings, Warning{Table: table, Column: col, Message: "column missing"})
		}
	}

	var unexpected []string
	for col := range header {
		if !slices.Contains(known, col) {
			unexpected = append(unexpected, col)
		}
	}
	sort.Strings(unexpected)
	for _, col := range unexpected {
		warnings = append(warnings, Warning{Table: table, Column: col, Message: "unexpected column ignored"})
	}
	return warnings
}

// toRank accepts whole numbers and tie notation such as "T3".
func toRank(v any) (int, string) {
	if isEmpty(v) {
		return 0, "rank is empty"
	}
	raw := v
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if len(s) > 1 && (s[0] == 'T' || s[0] == 't') && s[1] >= '0' && s[1] <= '9' {
			s = s[1:]
		}
		v = s
	}
	n, ok := toNumber(v)
	if !ok {
		return 0, fmt.Sprintf("rank %q is not a number", cellText(raw))
	}
	if n != math.Trunc(n) {
		return 0, fmt.Sprintf("rank %v is not a whole number", n)
	}
	if n < 1 {
		return 0, fmt.Sprintf("rank %v is below 1", n)
	}
	return int(n), ""
}

// toTotal coerces a total. An empty or non-numeric cell (e.g. "WD") reads as
// 0 with a warning; the row itself is kept.
func toTotal(v any) (total float64, warning string) {
	if isEmpty(v) {
		return 0, "total is empty, shown as 0"
	}
	n, ok := toNumber(v)
	if !ok {
		return 0, fmt.Sprintf("total %q is not a number, shown as 0", cellText(v))
	}
	return n, ""
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// toNumber coerces a cell to a float. Strings are trimmed and may carry
// thousands separators.
func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// cellText renders a cell as text. Strings are returned untouched: player
// names are a join key and must not be normalised.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
