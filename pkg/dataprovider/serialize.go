package dataprovider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// Serializer flattens records back into JSON:API request documents.
type Serializer struct {
	registry Registry
}

// NewSerializer creates a Serializer backed by registry.
func NewSerializer(registry Registry) *Serializer {
	return &Serializer{registry: registry}
}

type requestDocument struct {
	Data requestResource `json:"data"`
}

type requestResource struct {
	Type          string                          `json:"type"`
	ID            string                          `json:"id,omitempty"`
	Attributes    map[string]any                  `json:"attributes"`
	Relationships map[string]requestRelationship `json:"relationships,omitempty"`
}

type requestRelationship struct {
	Data jsonapi.Linkage `json:"data"`
}

// Serialize builds the document body for record. Fields registered as
// relationships of resource become linkage; everything else is an attribute.
// data.id is emitted only when the record carries one.
func (s *Serializer) Serialize(resource string, record Record) ([]byte, error) {
	id, _ := record.ID()
	return s.encode(resource, id, record)
}

// SerializeUpdate is Serialize with data.id forced to id.
func (s *Serializer) SerializeUpdate(resource, id string, record Record) ([]byte, error) {
	if id == "" {
		id, _ = record.ID()
	}
	return s.encode(resource, id, record)
}

func (s *Serializer) encode(resource, id string, record Record) ([]byte, error) {
	out := requestResource{
		Type:       resource,
		ID:         id,
		Attributes: make(map[string]any, len(record)),
	}

	for field, value := range record {
		if field == "id" {
			continue
		}
		target, ok := s.registry.Target(resource, field)
		if !ok {
			out.Attributes[field] = value
			continue
		}
		if out.Relationships == nil {
			out.Relationships = make(map[string]requestRelationship)
		}
		linkage, err := linkageFor(target, value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", resource, field, err)
		}
		out.Relationships[field] = requestRelationship{Data: linkage}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(requestDocument{Data: out}); err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", resource, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// linkageFor accepts a bare id, an object carrying an id, or a slice or
// array of either. Objects without an id are no reference: null for a
// to-one, skipped in a to-many. Values that cannot carry an id are an error.
func linkageFor(target string, value any) (jsonapi.Linkage, error) {
	if value == nil {
		return jsonapi.Null(), nil
	}

	rv := reflect.ValueOf(value)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		ids := make([]jsonapi.Identifier, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			id, ok, err := referenceID(rv.Index(i).Interface())
			if err != nil {
				return jsonapi.Linkage{}, err
			}
			if ok {
				ids = append(ids, jsonapi.Identifier{Type: target, ID: jsonapi.Scalar(id)})
			}
		}
		return jsonapi.ToMany(ids...), nil
	}

	id, ok, err := referenceID(value)
	if err != nil {
		return jsonapi.Linkage{}, err
	}
	if !ok {
		return jsonapi.Null(), nil
	}
	return jsonapi.ToOne(target, id), nil
}

func referenceID(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case Record:
		id, ok := x.ID()
		return id, ok, nil
	case map[string]any:
		id, ok := idString(x["id"])
		return id, ok, nil
	case map[string]string:
		return x["id"], x["id"] != "", nil
	case jsonapi.Identifier:
		return string(x.ID), x.ID != "", nil
	case *jsonapi.Identifier:
		if x == nil {
			return "", false, nil
		}
		return string(x.ID), x.ID != "", nil
	}
	if id, ok := idString(v); ok {
		return id, true, nil
	}
	if reflect.ValueOf(v).Kind() == reflect.String {
		return "", false, nil
	}
	return "", false, fmt.Errorf("cannot use %T as a relationship reference", v)
}
