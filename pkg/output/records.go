package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/telhawk-systems/jsonapi-provider/pkg/dataprovider"
)

// Formats accepted by Result.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Result prints a verb result. The json format writes the {"data", "total"}
// envelope as-is; the table format writes one row per record.
func Result(res *dataprovider.Result, format string) error {
	switch format {
	case FormatJSON:
		return JSON(res)
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q (use table or json)", format)
	}

	records := res.Records()
	if records == nil {
		if rec := res.Record(); rec != nil {
			records = []dataprovider.Record{rec}
		}
	}
	Records(records)

	if res.HasTotal {
		if res.Total == nil {
			Info("total: unknown")
		} else {
			Info("total: %d", *res.Total)
		}
	}
	return nil
}

// Records renders records as a table. The id column comes first, the other
// columns are sorted.
func Records(records []dataprovider.Record) {
	headers := columns(records)
	table := NewTable(headers)
	for _, rec := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := rec[h]; ok {
				row[i] = cell(v)
			}
		}
		table.AddRow(row)
	}
	table.Render()
}

func columns(records []dataprovider.Record) []string {
	seen := map[string]bool{}
	var rest []string
	for _, rec := range records {
		for k := range rec {
			if k == "id" || seen[k] {
				continue
			}
			seen[k] = true
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append([]string{"id"}, rest...)
}

// cell formats a value for a table cell. Embedded records show their id.
func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case dataprovider.Record:
		id, _ := val.ID()
		return id
	case []dataprovider.Record:
		ids := make([]string, 0, len(val))
		for _, rec := range val {
			if id, ok := rec.ID(); ok {
				ids = append(ids, id)
			}
		}
		return strings.Join(ids, ",")
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
