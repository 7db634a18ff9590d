package dataprovider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// Normalizer resolves JSON:API documents into denormalized records.
type Normalizer struct {
	registry      Registry
	totalKey      string
	countDisabled bool
}

// NewNormalizer creates a Normalizer. totalKey names the meta member holding
// the collection count; countDisabled forces a null total.
func NewNormalizer(registry Registry, totalKey string, countDisabled bool) *Normalizer {
	return &Normalizer{
		registry:      registry,
		totalKey:      totalKey,
		countDisabled: countDisabled,
	}
}

// Normalize converts the response document of a verb call into a Result.
// DELETE ignores doc entirely; doc may be nil there.
func (n *Normalizer) Normalize(verb Verb, resource string, doc *jsonapi.Document, params Params) (*Result, error) {
	if !verb.Valid() {
		return nil, &UnsupportedVerbError{Verb: string(verb)}
	}

	if verb == Delete {
		return &Result{Data: Record{"id": CoerceID(params.ID)}}, nil
	}

	if doc == nil {
		doc = &jsonapi.Document{}
	}
	index := indexIncluded(doc.Included)

	if verb.IsCollection() {
		primary := doc.Data.Many
		if !doc.Data.IsMany && doc.Data.One != nil {
			primary = []jsonapi.Resource{*doc.Data.One}
		}
		records := make([]Record, 0, len(primary))
		for i := range primary {
			records = append(records, n.denormalize(&primary[i], resource, index))
		}
		return &Result{Data: records, Total: n.total(doc, len(records)), HasTotal: true}, nil
	}

	if doc.Data.IsMany {
		return nil, fmt.Errorf("%s %s: expected a single resource, got a collection", verb, resource)
	}

	if doc.Data.One == nil {
		if verb.IsWrite() {
			// 204 No Content: the server accepted the record as sent.
			return &Result{Data: synthesize(params)}, nil
		}
		return &Result{Data: Record(nil)}, nil
	}

	return &Result{Data: n.denormalize(doc.Data.One, resource, index)}, nil
}

func indexIncluded(included []jsonapi.Resource) map[jsonapi.Key]*jsonapi.Resource {
	index := make(map[jsonapi.Key]*jsonapi.Resource, len(included))
	for i := range included {
		index[included[i].Key()] = &included[i]
	}
	return index
}

// flatten copies attributes onto a new record next to the coerced id.
func flatten(res *jsonapi.Resource) Record {
	rec := make(Record, len(res.Attributes)+1)
	for k, v := range res.Attributes {
		rec[k] = v
	}
	rec["id"] = CoerceID(string(res.ID))
	return rec
}

func (n *Normalizer) denormalize(res *jsonapi.Resource, resource string, index map[jsonapi.Key]*jsonapi.Resource) Record {
	rec := flatten(res)

	typ := res.Type
	if typ == "" {
		typ = resource
	}
	for _, field := range n.registry.Fields(typ) {
		rel, ok := res.Relationships[field]
		if !ok {
			continue
		}
		if v, ok := resolve(rel.Data, index); ok {
			rec[field] = v
		}
	}
	return rec
}

// resolve dereferences a linkage through the included index. Missing targets
// are dropped; a to-one linkage with nothing to resolve reports false.
func resolve(l jsonapi.Linkage, index map[jsonapi.Key]*jsonapi.Resource) (any, bool) {
	if l.IsMany {
		out := make([]Record, 0, len(l.Many))
		for _, id := range l.Many {
			if target, ok := index[id.Key()]; ok {
				out = append(out, flatten(target))
			}
		}
		if len(out) == 0 && len(l.Many) > 0 {
			return nil, false
		}
		return out, true
	}
	if l.One == nil {
		return nil, false
	}
	target, ok := index[l.One.Key()]
	if !ok {
		return nil, false
	}
	return flatten(target), true
}

func (n *Normalizer) total(doc *jsonapi.Document, count int) *int {
	if n.countDisabled {
		return nil
	}
	if n.totalKey != "" && doc.Meta != nil {
		if v, ok := metaInt(doc.Meta[n.totalKey]); ok {
			return &v
		}
	}
	return &count
}

// metaInt reads a count from meta. Only whole, non-negative values that fit
// in an int are accepted.
func metaInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return countFromFloat(x)
	case int:
		return x, x >= 0
	case int64:
		if x < 0 || x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return metaInt(i)
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return countFromFloat(f)
	case string:
		i, err := strconv.Atoi(x)
		return i, err == nil && i >= 0
	}
	return 0, false
}

func countFromFloat(f float64) (int, bool) {
	if f < 0 || f != math.Trunc(f) || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

func synthesize(params Params) Record {
	rec := make(Record, len(params.Data)+1)
	for k, v := range params.Data {
		rec[k] = v
	}
	if params.ID != "" {
		rec["id"] = CoerceID(params.ID)
	} else if id, ok := rec.ID(); ok {
		rec["id"] = CoerceID(id)
	}
	return rec
}
