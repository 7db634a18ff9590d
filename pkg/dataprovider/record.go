package dataprovider

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// Record is a flat, denormalized resource: attributes on the top level next to
// "id", relationship fields holding embedded records.
type Record map[string]any

// ID returns the record's id in its textual form.
func (r Record) ID() (string, bool) {
	return idString(r["id"])
}

// Pagination selects a page of a collection.
type Pagination struct {
	Page    int
	PerPage int
}

// Sort orders a collection by a single field. Order is "ASC" or "DESC".
type Sort struct {
	Field string
	Order string
}

// Params carries the arguments of a verb call. Each verb reads only the
// fields it needs.
type Params struct {
	ID         string
	IDs        []string
	Target     string
	Data       Record
	Pagination Pagination
	Sort       Sort
	Filter     map[string]any
	Include    []string
	Fields     map[string][]string
}

// Result is the envelope handed back to the caller. Data is a Record for
// single-resource verbs and a []Record for collection verbs. HasTotal is set
// for collection verbs only; Total is nil when counting is disabled.
type Result struct {
	Data     any
	Total    *int
	HasTotal bool
}

// Record returns the single record of the envelope, or nil.
func (r *Result) Record() Record {
	rec, _ := r.Data.(Record)
	return rec
}

// Records returns the records of a collection envelope, or nil.
func (r *Result) Records() []Record {
	recs, _ := r.Data.([]Record)
	return recs
}

// MarshalJSON emits {"data": ...} and, for collections, "total".
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.HasTotal {
		return json.Marshal(struct {
			Data any `json:"data"`
		}{r.Data})
	}
	return json.Marshal(struct {
		Data  any  `json:"data"`
		Total *int `json:"total"`
	}{r.Data, r.Total})
}

// CoerceID maps a textual id to its natural representation: a canonical
// base-10 integer becomes an int64, anything else stays a string. "007" and
// "+7" are not canonical and stay strings.
func CoerceID(id string) any {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != id {
		return id
	}
	return n
}

// idString extracts an id from the shapes callers use for it.
func idString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case jsonapi.Scalar:
		return string(x), x != ""
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.String:
		return rv.String(), rv.Len() > 0
	}
	return "", false
}
