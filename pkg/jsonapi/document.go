// Package jsonapi holds the wire model of JSON:API documents as they travel
// between the data provider and a JSON:API server.
package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MediaType is the official JSON:API media type.
const MediaType = "application/vnd.api+json"

// Scalar is a JSON string or number decoded into its textual form.
// Servers are supposed to send ids and error statuses as strings, but plenty
// of them emit numbers.
type Scalar string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*s = Scalar(n.String())
	return nil
}

// String returns the textual form.
func (s Scalar) String() string { return string(s) }

// Identifier is a resource identifier object.
type Identifier struct {
	Type string `json:"type"`
	ID   Scalar `json:"id"`
}

// Key returns the (type, id) pair that identifies a resource within a document.
func (i Identifier) Key() Key {
	return Key{Type: i.Type, ID: string(i.ID)}
}

// Key identifies a resource within a document.
type Key struct {
	Type string
	ID   string
}

// Linkage is the "data" member of a relationship object. It distinguishes an
// absent member, an explicit null, a to-one identifier and a to-many array.
type Linkage struct {
	One    *Identifier
	Many   []Identifier
	IsMany bool
	set    bool
}

// ToOne builds a to-one linkage.
func ToOne(typ, id string) Linkage {
	return Linkage{One: &Identifier{Type: typ, ID: Scalar(id)}, set: true}
}

// ToMany builds a to-many linkage.
func ToMany(ids ...Identifier) Linkage {
	if ids == nil {
		ids = []Identifier{}
	}
	return Linkage{Many: ids, IsMany: true, set: true}
}

// Null builds an explicit null linkage.
func Null() Linkage {
	return Linkage{set: true}
}

// Present reports whether the "data" member appeared in the document.
func (l Linkage) Present() bool { return l.set }

// UnmarshalJSON implements json.Unmarshaler.
func (l *Linkage) UnmarshalJSON(b []byte) error {
	*l = Linkage{set: true}
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '[':
		l.IsMany = true
		l.Many = []Identifier{}
		return json.Unmarshal(b, &l.Many)
	default:
		l.One = &Identifier{}
		return json.Unmarshal(b, l.One)
	}
}

// MarshalJSON implements json.Marshaler.
func (l Linkage) MarshalJSON() ([]byte, error) {
	switch {
	case l.IsMany:
		if l.Many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.Many)
	case l.One != nil:
		return json.Marshal(l.One)
	default:
		return []byte("null"), nil
	}
}

// Relationship is a JSON:API relationship object.
type Relationship struct {
	Data  Linkage        `json:"data"`
	Links map[string]any `json:"links,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Resource represents a single JSON:API resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            Scalar                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]any          `json:"links,omitempty"`
	Meta          map[string]any          `json:"meta,omitempty"`
}

// Key returns the (type, id) pair of the resource.
func (r Resource) Key() Key {
	return Key{Type: r.Type, ID: string(r.ID)}
}

// PrimaryData is the top-level "data" member: a single resource, an array of
// resources, or null.
type PrimaryData struct {
	One    *Resource
	Many   []Resource
	IsMany bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PrimaryData) UnmarshalJSON(b []byte) error {
	*p = PrimaryData{}
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '[':
		p.IsMany = true
		p.Many = []Resource{}
		return json.Unmarshal(b, &p.Many)
	default:
		p.One = &Resource{}
		return json.Unmarshal(b, p.One)
	}
}

// MarshalJSON implements json.Marshaler.
func (p PrimaryData) MarshalJSON() ([]byte, error) {
	switch {
	case p.IsMany:
		if p.Many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.Many)
	case p.One != nil:
		return json.Marshal(p.One)
	default:
		return []byte("null"), nil
	}
}

// ErrorObject represents a single JSON:API error.
type ErrorObject struct {
	ID     string            `json:"id,omitempty"`
	Status Scalar            `json:"status,omitempty"`
	Code   string            `json:"code,omitempty"`
	Title  string            `json:"title,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Source map[string]string `json:"source,omitempty"` // e.g., {"pointer": "/data/attributes/email"}
}

// Document is a top-level JSON:API document.
type Document struct {
	Data     PrimaryData    `json:"data"`
	Included []Resource     `json:"included,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	Links    map[string]any `json:"links,omitempty"`
	Errors   []ErrorObject  `json:"errors,omitempty"`
}

// Decode parses a response body. An empty body yields an empty document,
// which is what a 204 No Content answer looks like.
func Decode(body []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(body)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON:API document: %w", err)
	}
	return doc, nil
}
