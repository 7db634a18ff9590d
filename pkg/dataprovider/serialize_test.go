package dataprovider

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

func TestSerialize_Create(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.Serialize("projects", Record{
		"title": "Apollo",
		"owner": "3",
	})
	require.NoError(t, err)

	assert.Equal(t,
		`{"data":{"type":"projects","attributes":{"title":"Apollo"},"relationships":{"owner":{"data":{"type":"users","id":"3"}}}}}`,
		string(body))
}

func TestSerialize_EquivalentShapes(t *testing.T) {
	s := NewSerializer(projectRegistry)
	expected := `{"data":{"type":"projects","id":"7","attributes":{"title":"Apollo"},"relationships":{"owner":{"data":{"type":"users","id":"3"}}}}}`

	shapes := map[string]any{
		"bare id":        "3",
		"numeric id":     3,
		"float id":       float64(3),
		"id object":      map[string]any{"id": "3"},
		"record":         Record{"id": int64(3), "name": "Bob"},
		"numeric object": map[string]any{"id": 3, "name": "Bob"},
	}

	for name, owner := range shapes {
		t.Run(name, func(t *testing.T) {
			body, err := s.Serialize("projects", Record{"id": "7", "title": "Apollo", "owner": owner})
			require.NoError(t, err)
			assert.Equal(t, expected, string(body))
		})
	}
}

func TestSerialize_ToManyShapes(t *testing.T) {
	s := NewSerializer(projectRegistry)
	expected := `{"data":{"type":"projects","attributes":{},"relationships":{"members":{"data":[{"type":"users","id":"4"},{"type":"users","id":"3"}]}}}}`

	shapes := map[string]any{
		"strings":       []string{"4", "3"},
		"mixed":         []any{"4", map[string]any{"id": "3"}},
		"records":       []Record{{"id": int64(4)}, {"id": int64(3), "name": "Bob"}},
		"maps":          []map[string]any{{"id": "4"}, {"id": "3"}},
		"numbers":       []any{4, float64(3)},
		"skips id-less": []any{"4", map[string]any{"name": "nobody"}, "3"},
		"ints":          []int{4, 3},
		"int64s":        []int64{4, 3},
		"uint32s":       []uint32{4, 3},
		"array":         [2]string{"4", "3"},
		"identifiers":   []jsonapi.Identifier{{Type: "users", ID: "4"}, {Type: "users", ID: "3"}},
		"id pointers":   []*jsonapi.Identifier{{Type: "users", ID: "4"}, {Type: "users", ID: "3"}},
		"string maps":   []map[string]string{{"id": "4"}, {"id": "3"}},
	}

	for name, members := range shapes {
		t.Run(name, func(t *testing.T) {
			body, err := s.Serialize("projects", Record{"members": members})
			require.NoError(t, err)
			assert.Equal(t, expected, string(body))
		})
	}
}

func TestSerialize_NullAndEmptyRelationships(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.Serialize("projects", Record{"owner": nil, "members": []string{}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"data":{"type":"projects","attributes":{},"relationships":{"members":{"data":[]},"owner":{"data":null}}}}`,
		string(body))

	body, err = s.Serialize("projects", Record{"owner": map[string]any{"name": "no id"}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"data":{"type":"projects","attributes":{},"relationships":{"owner":{"data":null}}}}`,
		string(body))
}

func TestSerialize_UnreadableReference(t *testing.T) {
	s := NewSerializer(projectRegistry)

	tests := map[string]Record{
		"to-one bool":     {"owner": true},
		"to-one struct":   {"owner": struct{ Name string }{"Bob"}},
		"to-many bools":   {"members": []bool{true, false}},
		"to-many structs": {"members": []any{"4", struct{}{}}},
	}

	for name, record := range tests {
		t.Run(name, func(t *testing.T) {
			body, err := s.Serialize("projects", record)
			require.Error(t, err)
			assert.Nil(t, body)
			assert.Contains(t, err.Error(), "projects.")
		})
	}
}

func TestSerialize_EmptyStringIsNullReference(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.Serialize("projects", Record{"owner": ""})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"projects","attributes":{},"relationships":{"owner":{"data":null}}}}`, string(body))
}

func TestSerialize_UnregisteredFieldIsAttribute(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.Serialize("projects", Record{
		"client": map[string]any{"id": "1", "name": "ACME"},
		"tags":   []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`{"data":{"type":"projects","attributes":{"client":{"id":"1","name":"ACME"},"tags":["a","b"]}}}`,
		string(body))
}

func TestSerialize_RelationshipOfOtherResourceIsAttribute(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.Serialize("tasks", Record{"owner": "3"})
	require.NoError(t, err)

	assert.Equal(t, `{"data":{"type":"tasks","attributes":{"owner":"3"}}}`, string(body))
}

func TestSerialize_NoHTMLEscaping(t *testing.T) {
	s := NewSerializer(Registry{})

	body, err := s.Serialize("notes", Record{"text": "<b>a & b</b>"})
	require.NoError(t, err)

	assert.Equal(t, `{"data":{"type":"notes","attributes":{"text":"<b>a & b</b>"}}}`, string(body))
}

func TestSerializeUpdate_ForcesID(t *testing.T) {
	s := NewSerializer(projectRegistry)

	body, err := s.SerializeUpdate("projects", "7", Record{"id": "8", "title": "Apollo"})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"projects","id":"7","attributes":{"title":"Apollo"}}}`, string(body))

	body, err = s.SerializeUpdate("projects", "", Record{"id": int64(8), "title": "Apollo"})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"projects","id":"8","attributes":{"title":"Apollo"}}}`, string(body))
}

func TestSerialize_RoundTrip(t *testing.T) {
	n := NewNormalizer(projectRegistry, DefaultTotalKey, false)
	s := NewSerializer(projectRegistry)

	title := gofakeit.AppName()
	ownerName := gofakeit.Name()
	source := `{
		"data": {
			"type": "projects", "id": "7",
			"attributes": {"title": ` + quote(t, title) + `},
			"relationships": {
				"owner": {"data": {"type": "users", "id": "3"}},
				"members": {"data": [{"type": "users", "id": "3"}]}
			}
		},
		"included": [{"type": "users", "id": "3", "attributes": {"name": ` + quote(t, ownerName) + `}}]
	}`

	res, err := n.Normalize(GetOne, "projects", decode(t, source), Params{})
	require.NoError(t, err)

	body, err := s.Serialize("projects", res.Record())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	data := out["data"].(map[string]any)
	assert.Equal(t, "7", data["id"])
	assert.Equal(t, map[string]any{"title": title}, data["attributes"])
	assert.Equal(t, map[string]any{
		"owner":   map[string]any{"data": map[string]any{"type": "users", "id": "3"}},
		"members": map[string]any{"data": []any{map[string]any{"type": "users", "id": "3"}}},
	}, data["relationships"])
}

func quote(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}
