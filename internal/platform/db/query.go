package db

import (
	"fmt"
	"sort"
	"strings"
)

// FilterType selects how a query-string filter is matched.
type FilterType int

const (
	FilterExact    FilterType = iota // column = value
	FilterBool                       // column = value parsed as true/false
	FilterContains                   // any of Columns ILIKE %value%
)

// FilterConfig maps a query-string filter onto columns.
type FilterConfig struct {
	Type    FilterType
	Columns []string
}

// SearchQuery builds parameterised list queries with optional filters.
// from may be a single table or a join expression.
type SearchQuery struct {
	from    string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

func NewSearchQuery(from, cols string) *SearchQuery {
	return &SearchQuery{from: from, cols: cols, idx: 1}
}

// Idx returns the next available parameter index.
func (q *SearchQuery) Idx() int { return q.idx }

// Add appends a raw WHERE clause fragment (without leading "AND").
// Placeholders in clause must start at Idx().
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// AddEquals adds "column = $n".
func (q *SearchQuery) AddEquals(column string, value interface{}) {
	q.Add(fmt.Sprintf("%s = $%d", column, q.idx), value)
}

// AddContains matches value case-insensitively as a substring of any of
// the columns. LIKE wildcards in value are matched literally.
func (q *SearchQuery) AddContains(columns []string, value string) {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, q.idx)
	}
	q.Add("("+strings.Join(parts, " OR ")+")", "%"+escapeLike(value)+"%")
}

// ApplyFilters applies every configured filter present in params. Empty
// values and values that do not parse for their type are ignored. Filters
// are applied in sorted key order so generated SQL is stable.
func (q *SearchQuery) ApplyFilters(params map[string]string, configs map[string]FilterConfig) {
	for _, name := range sortedKeys(configs) {
		value := strings.TrimSpace(params[name])
		if value == "" {
			continue
		}
		cfg := configs[name]
		switch cfg.Type {
		case FilterExact:
			q.AddEquals(cfg.Columns[0], value)
		case FilterBool:
			switch strings.ToLower(value) {
			case "true", "1":
				q.AddEquals(cfg.Columns[0], true)
			case "false", "0":
				q.AddEquals(cfg.Columns[0], false)
			}
		case FilterContains:
			q.AddContains(cfg.Columns, value)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL.
func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.from, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *SearchQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (filter args + limit + offset).
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func sortedKeys(m map[string]FilterConfig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
