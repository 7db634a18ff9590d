package jsonapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SingleResource(t *testing.T) {
	body := []byte(`{
		"data": {
			"type": "projects",
			"id": "7",
			"attributes": {"name": "Apollo"},
			"relationships": {
				"owner": {"data": {"type": "users", "id": "3"}},
				"members": {"data": [{"type": "users", "id": "3"}, {"type": "users", "id": "4"}]},
				"parent": {"data": null},
				"tags": {"links": {"related": "/projects/7/tags"}}
			}
		}
	}`)

	doc, err := Decode(body)
	require.NoError(t, err)

	require.NotNil(t, doc.Data.One)
	assert.False(t, doc.Data.IsMany)
	res := doc.Data.One
	assert.Equal(t, "projects", res.Type)
	assert.Equal(t, Scalar("7"), res.ID)
	assert.Equal(t, "Apollo", res.Attributes["name"])

	owner := res.Relationships["owner"].Data
	assert.True(t, owner.Present())
	require.NotNil(t, owner.One)
	assert.Equal(t, Key{Type: "users", ID: "3"}, owner.One.Key())

	members := res.Relationships["members"].Data
	assert.True(t, members.IsMany)
	assert.Len(t, members.Many, 2)

	parent := res.Relationships["parent"].Data
	assert.True(t, parent.Present())
	assert.Nil(t, parent.One)
	assert.False(t, parent.IsMany)

	tags := res.Relationships["tags"].Data
	assert.False(t, tags.Present())
}

func TestDecode_Collection(t *testing.T) {
	body := []byte(`{
		"data": [
			{"type": "users", "id": 1, "attributes": {"name": "Bob"}},
			{"type": "users", "id": "2", "attributes": {"name": "Alice"}}
		],
		"included": [{"type": "teams", "id": "9"}],
		"meta": {"total": 42}
	}`)

	doc, err := Decode(body)
	require.NoError(t, err)

	assert.True(t, doc.Data.IsMany)
	require.Len(t, doc.Data.Many, 2)
	assert.Equal(t, Scalar("1"), doc.Data.Many[0].ID)
	assert.Equal(t, Scalar("2"), doc.Data.Many[1].ID)
	require.Len(t, doc.Included, 1)
	assert.Equal(t, Key{Type: "teams", ID: "9"}, doc.Included[0].Key())
	assert.Equal(t, float64(42), doc.Meta["total"])
}

func TestDecode_EmptyCollection(t *testing.T) {
	doc, err := Decode([]byte(`{"data": []}`))
	require.NoError(t, err)

	assert.True(t, doc.Data.IsMany)
	assert.NotNil(t, doc.Data.Many)
	assert.Empty(t, doc.Data.Many)
}

func TestDecode_EmptyBody(t *testing.T) {
	for _, body := range [][]byte{nil, []byte(""), []byte("  \n")} {
		doc, err := Decode(body)
		require.NoError(t, err)
		assert.Nil(t, doc.Data.One)
		assert.False(t, doc.Data.IsMany)
	}
}

func TestDecode_Errors(t *testing.T) {
	body := []byte(`{"errors": [{"status": 422, "code": "validation_failed", "title": "Validation Failed", "detail": "name is required", "source": {"pointer": "/data/attributes/name"}}]}`)

	doc, err := Decode(body)
	require.NoError(t, err)

	require.Len(t, doc.Errors, 1)
	assert.Equal(t, Scalar("422"), doc.Errors[0].Status)
	assert.Equal(t, "Validation Failed", doc.Errors[0].Title)
	assert.Equal(t, "/data/attributes/name", doc.Errors[0].Source["pointer"])
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"data": `))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"data": {"type": "users", "id": true}}`))
	assert.Error(t, err)
}

func TestLinkage_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		linkage  Linkage
		expected string
	}{
		{name: "to-one", linkage: ToOne("users", "3"), expected: `{"type":"users","id":"3"}`},
		{name: "to-many", linkage: ToMany(Identifier{Type: "users", ID: "3"}), expected: `[{"type":"users","id":"3"}]`},
		{name: "empty to-many", linkage: ToMany(), expected: `[]`},
		{name: "null", linkage: Null(), expected: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.linkage)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(b))
		})
	}
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := Document{
		Data: PrimaryData{One: &Resource{
			Type:       "users",
			ID:         "1",
			Attributes: map[string]any{"name": "Bob"},
		}},
	}

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"users","id":"1","attributes":{"name":"Bob"}}}`, string(b))
}
