package dataprovider

import "sort"

// Registry maps, per resource type, each relationship field to the resource
// type it references (projects.owner -> users). It is built once and never
// mutated; the zero value is an empty registry.
type Registry struct {
	fields map[string]map[string]string
}

// NewRegistry copies m into a new Registry.
func NewRegistry(m map[string]map[string]string) Registry {
	fields := make(map[string]map[string]string, len(m))
	for resource, rels := range m {
		inner := make(map[string]string, len(rels))
		for field, target := range rels {
			inner[field] = target
		}
		fields[resource] = inner
	}
	return Registry{fields: fields}
}

// Target returns the referenced type of resource.field.
func (r Registry) Target(resource, field string) (string, bool) {
	target, ok := r.fields[resource][field]
	return target, ok
}

// Fields returns the relationship fields declared for resource, sorted.
func (r Registry) Fields(resource string) []string {
	rels := r.fields[resource]
	out := make([]string, 0, len(rels))
	for field := range rels {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Resources returns the resource types that declare relationships, sorted.
func (r Registry) Resources() []string {
	out := make([]string, 0, len(r.fields))
	for resource := range r.fields {
		out = append(out, resource)
	}
	sort.Strings(out)
	return out
}
