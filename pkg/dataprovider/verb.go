package dataprovider

import "fmt"

// Verb is one of the data-provider request types a UI layer may issue.
type Verb string

const (
	GetList          Verb = "GET_LIST"
	GetOne           Verb = "GET_ONE"
	GetMany          Verb = "GET_MANY"
	GetManyReference Verb = "GET_MANY_REFERENCE"
	Create           Verb = "CREATE"
	Update           Verb = "UPDATE"
	Delete           Verb = "DELETE"
)

// Verbs lists the supported verbs in a stable order.
var Verbs = []Verb{GetList, GetOne, GetMany, GetManyReference, Create, Update, Delete}

// Valid reports whether v belongs to the supported verb set.
func (v Verb) Valid() bool {
	switch v {
	case GetList, GetOne, GetMany, GetManyReference, Create, Update, Delete:
		return true
	}
	return false
}

// IsWrite reports whether the verb sends a document body.
func (v Verb) IsWrite() bool {
	return v == Create || v == Update
}

// IsCollection reports whether the verb answers with a list of records.
func (v Verb) IsCollection() bool {
	return v == GetList || v == GetMany || v == GetManyReference
}

// ParseVerb validates a verb name without performing any I/O.
func ParseVerb(name string) (Verb, error) {
	v := Verb(name)
	if !v.Valid() {
		return "", &UnsupportedVerbError{Verb: name}
	}
	return v, nil
}

// UnsupportedVerbError is returned before any network call when the verb is
// outside the supported set.
type UnsupportedVerbError struct {
	Verb string
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf("Unsupported verb %q", e.Verb)
}
