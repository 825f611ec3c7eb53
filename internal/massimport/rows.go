package massimport

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Row is one non-empty data row mapped onto canonical field keys.
type Row struct {
	// Line is the 1-based line of the row in the sheet.
	Line   int
	Values map[string]string
}

// Get returns the trimmed raw value of a canonical field, "" when absent.
func (r Row) Get(key string) string {
	return r.Values[key]
}

// RowSet is the normalized content of a sheet for one schema.
type RowSet struct {
	Header  []string
	Columns map[string]int
	Rows    []Row
}

// All yields rows in source order. The set can be iterated more than once.
func (rs *RowSet) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, r := range rs.Rows {
			if !yield(r) {
				return
			}
		}
	}
}

func (rs *RowSet) Len() int {
	return len(rs.Rows)
}

// HeaderError reports required fields no column could be resolved for.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return MsgInvalidHeaders + strings.Join(e.Missing, ", ")
}

// NormalizeRows resolves the sheet header against schema and maps every
// non-empty data row onto canonical keys. The first non-empty row is the header.
func NormalizeRows(sheet *Sheet, schema Schema) (*RowSet, error) {
	headerAt := -1
	for i, cells := range sheet.Rows {
		if !isEmptyRow(cells) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, &HeaderError{Missing: append([]string(nil), schema.HeaderRequired...)}
	}

	keys := HeaderKeys(sheet.Rows[headerAt])
	columns := ResolveColumns(keys, schema)

	var missing []string
	for _, key := range schema.HeaderRequired {
		if _, ok := columns[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}

	rs := &RowSet{Header: keys, Columns: columns}
	for i := headerAt + 1; i < len(sheet.Rows); i++ {
		cells := sheet.Rows[i]
		if isEmptyRow(cells) {
			continue
		}
		values := make(map[string]string, len(columns))
		for key, col := range columns {
			if col < len(cells) {
				values[key] = cleanCell(cells[col])
			}
		}
		rs.Rows = append(rs.Rows, Row{Line: i + 1, Values: values})
	}
	return rs, nil
}

// HeaderKeys lower-cases and trims header cells. Blank cells get the
// positional key col_<i>.
func HeaderKeys(cells []string) []string {
	keys := make([]string, len(cells))
	for i, c := range cells {
		k := strings.ToLower(cleanCell(c))
		if k == "" {
			k = positionalKey(i)
		}
		keys[i] = k
	}
	return keys
}

func positionalKey(i int) string {
	return fmt.Sprintf("col_%d", i)
}

// ResolveColumns maps every schema field it can onto a column index. Each
// field tries, in order: exact key, key with '_' read as ' ', its template
// position when that header cell is blank. Fields still unresolved then get a
// fuzzy pass over the columns nobody claimed.
func ResolveColumns(keys []string, schema Schema) map[string]int {
	columns := make(map[string]int, len(schema.Fields))
	taken := make(map[int]bool, len(keys))

	for _, f := range schema.Fields {
		if col, ok := resolveDirect(keys, f, taken); ok {
			columns[f.Key] = col
			taken[col] = true
		}
	}
	for _, f := range schema.Fields {
		if _, ok := columns[f.Key]; ok {
			continue
		}
		for _, target := range fuzzyTargets(f) {
			if col, ok := FuzzyMatchColumn(keys, target, taken); ok {
				columns[f.Key] = col
				taken[col] = true
				break
			}
		}
	}
	return columns
}

func resolveDirect(keys []string, f Field, taken map[int]bool) (int, bool) {
	candidates := append([]string{f.Key}, f.Aliases...)
	for _, c := range candidates {
		if col := indexOf(keys, c, taken); col >= 0 {
			return col, true
		}
	}
	for _, c := range candidates {
		if col := indexOf(keys, strings.ReplaceAll(c, "_", " "), taken); col >= 0 {
			return col, true
		}
	}
	if f.Position < len(keys) && !taken[f.Position] && keys[f.Position] == positionalKey(f.Position) {
		return f.Position, true
	}
	return -1, false
}

func fuzzyTargets(f Field) []string {
	targets := []string{f.Key}
	targets = append(targets, f.Aliases...)
	for _, label := range []string{f.LabelFR, f.LabelEN} {
		if k := NormalizeKey(label); k != "" {
			targets = append(targets, k)
		}
	}
	return targets
}

// FuzzyMatchColumn returns the first column not in taken whose accent-folded
// key equals target or holds it as an underscore-delimited segment: starting
// with "target_", ending with "_target" or containing "_target_".
func FuzzyMatchColumn(keys []string, target string, taken map[int]bool) (int, bool) {
	target = NormalizeKey(target)
	if target == "" {
		return -1, false
	}
	for i, k := range keys {
		if taken[i] {
			continue
		}
		folded := NormalizeKey(k)
		if folded == target ||
			strings.HasPrefix(folded, target+"_") ||
			strings.HasSuffix(folded, "_"+target) ||
			strings.Contains(folded, "_"+target+"_") {
			return i, true
		}
	}
	return -1, false
}

func indexOf(keys []string, want string, taken map[int]bool) int {
	for i, k := range keys {
		if k == want && !taken[i] {
			return i
		}
	}
	return -1
}

// cleanCell trims whitespace including non-breaking spaces.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}

// isBlankCell treats numeric zero like an empty cell; unused template rows
// often carry formulas that evaluate to 0.
func isBlankCell(s string) bool {
	c := cleanCell(s)
	if c == "" {
		return true
	}
	if f, err := strconv.ParseFloat(c, 64); err == nil && f == 0 {
		return true
	}
	return false
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if !isBlankCell(c) {
			return false
		}
	}
	return true
}
