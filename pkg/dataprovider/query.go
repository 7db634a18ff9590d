package dataprovider

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Request is the HTTP shape of a verb call, relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

// BuildRequest turns a verb call into method, path and query string.
// UPDATE uses PATCH; the Client swaps in a configured method.
func BuildRequest(verb Verb, resource string, params Params) (Request, error) {
	if !verb.Valid() {
		return Request{}, &UnsupportedVerbError{Verb: string(verb)}
	}

	collection := "/" + url.PathEscape(resource)
	member := collection + "/" + url.PathEscape(params.ID)
	query := url.Values{}

	switch verb {
	case GetList:
		setPagination(query, params.Pagination)
		setSort(query, params.Sort)
		setFilters(query, params.Filter)
		setIncludes(query, params)
		return Request{Method: http.MethodGet, Path: collection, Query: query}, nil

	case GetManyReference:
		setPagination(query, params.Pagination)
		setSort(query, params.Sort)
		setFilters(query, params.Filter)
		if params.Target != "" {
			query.Set("filter["+params.Target+"]", params.ID)
		}
		setIncludes(query, params)
		return Request{Method: http.MethodGet, Path: collection, Query: query}, nil

	case GetMany:
		query.Set("filter[id]", strings.Join(params.IDs, ","))
		setIncludes(query, params)
		return Request{Method: http.MethodGet, Path: collection, Query: query}, nil

	case GetOne:
		setIncludes(query, params)
		return Request{Method: http.MethodGet, Path: member, Query: query}, nil

	case Create:
		return Request{Method: http.MethodPost, Path: collection, Query: query}, nil

	case Update:
		return Request{Method: http.MethodPatch, Path: member, Query: query}, nil

	default: // Delete
		return Request{Method: http.MethodDelete, Path: member, Query: query}, nil
	}
}

func setPagination(q url.Values, p Pagination) {
	if p.Page > 0 {
		q.Set("page[number]", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("page[size]", strconv.Itoa(p.PerPage))
	}
}

func setSort(q url.Values, s Sort) {
	if s.Field == "" {
		return
	}
	if strings.EqualFold(s.Order, "DESC") {
		q.Set("sort", "-"+s.Field)
		return
	}
	q.Set("sort", s.Field)
}

func setFilters(q url.Values, filter map[string]any) {
	for key, value := range filter {
		q.Set("filter["+key+"]", filterValue(value))
	}
}

func filterValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func setIncludes(q url.Values, p Params) {
	if len(p.Include) > 0 {
		q.Set("include", strings.Join(p.Include, ","))
	}
	for typ, fields := range p.Fields {
		q.Set("fields["+typ+"]", strings.Join(fields, ","))
	}
}
