package document

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsID(t *testing.T) {
	fields := map[string]any{"name": "Bob"}
	doc := New(fields)

	_, err := uuid.Parse(doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "Bob", doc["name"])
	assert.NotContains(t, fields, IDField)

	kept := New(map[string]any{"id": "abc"})
	assert.Equal(t, "abc", kept.ID())
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "", Document{}.ID())
	assert.Equal(t, "7", Document{"id": 7}.ID())
	assert.Equal(t, "7", Document{"id": int64(7)}.ID())
	assert.Equal(t, "1.5", Document{"id": 1.5}.ID())
	assert.Equal(t, "a", Document{"id": "a"}.Key())
}

func TestPatchesDoNotMutate(t *testing.T) {
	doc := Document{"id": "a", "name": "Bob", "tags": []any{"x"}}

	set := Set("name", "Alice")(doc)
	appended := Append("tags", "y", "z")(doc)
	unset := Unset("name")(doc)

	assert.Equal(t, "Alice", set["name"])
	assert.Equal(t, []any{"x", "y", "z"}, appended["tags"])
	assert.NotContains(t, unset, "name")
	assert.Equal(t, Document{"id": "a", "name": "Bob", "tags": []any{"x"}}, doc)
}

func TestAppendSingleValue(t *testing.T) {
	doc := Document{"id": "a", "tag": "x"}
	assert.Equal(t, []any{"x", "y"}, Append("tag", "y")(doc)["tag"])
	assert.Equal(t, []any{"y"}, Append("missing", "y")(doc)["missing"])
}

func TestParsePatch(t *testing.T) {
	patch, err := ParsePatch(map[string]any{
		"name": map[string]any{"set": "Alice"},
		"tags": map[string]any{"append": []any{"b"}},
		"age":  map[string]any{"unset": true},
		"note": map[string]any{"append": "n"},
	})
	require.NoError(t, err)

	out := patch(Document{"id": "a", "age": 4, "tags": []any{"a"}})
	assert.Equal(t, Document{"id": "a", "name": "Alice", "tags": []any{"a", "b"}, "note": []any{"n"}}, out)
}

func TestParsePatchInvalid(t *testing.T) {
	_, err := ParsePatch(map[string]any{"name": "Alice"})
	assert.Error(t, err)

	_, err = ParsePatch(map[string]any{"name": map[string]any{"drop": true}})
	assert.Error(t, err)

	_, err = ParsePatch(map[string]any{"name": map[string]any{"set": 1, "unset": true}})
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	existing := Document{"id": "a", "name": "Bob", "age": 3}
	out := Merge(existing, Document{"id": "a", "age": 4})

	assert.Equal(t, Document{"id": "a", "name": "Bob", "age": 4}, out)
	assert.Equal(t, 3, existing["age"])
}

func TestCompareField(t *testing.T) {
	compare := CompareField("start")

	assert.Negative(t, compare(Document{}, Document{"start": 1}))
	assert.Negative(t, compare(Document{"start": 1}, Document{"start": 2.5}))
	assert.Zero(t, compare(Document{"start": int64(2)}, Document{"start": 2.0}))
	assert.Positive(t, compare(Document{"start": "b"}, Document{"start": "a"}))
	assert.Negative(t, compare(Document{"start": false}, Document{"start": true}))
	assert.Negative(t, compare(Document{"start": true}, Document{"start": 0}))
	assert.Negative(t, compare(Document{"start": 9}, Document{"start": "0"}))
}

func TestAdapterUpsertMerges(t *testing.T) {
	a, err := Adapter(entity.WithSortComparer[string, Document](CompareField("start")))
	require.NoError(t, err)

	s := a.StateOf(Document{"id": "a", "start": 2, "name": "Bob"}, Document{"id": "b", "start": 1})
	assert.Equal(t, []string{"b", "a"}, s.IDs())

	s, change := a.UpsertOne(s, Document{"id": "a", "start": 0})
	assert.Equal(t, entity.Both, change)
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	doc, _ := s.Get("a")
	assert.Equal(t, "Bob", doc["name"])
}

func TestAdapterUpdateWithPatch(t *testing.T) {
	a, err := Adapter()
	require.NoError(t, err)

	s := a.StateOf(Document{"id": "a"})
	s, change := a.UpdateOne(s, entity.Update[string, Document]{ID: "a", Changes: Set("id", "b")})
	assert.Equal(t, entity.Both, change)
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestAssembleAndFromNode(t *testing.T) {
	doc := Document{
		"id":    "a",
		"count": 3,
		"ratio": 0.5,
		"ok":    true,
		"tags":  []any{"x", int64(2)},
		"meta":  map[string]any{"k": nil},
		"raw":   []byte{1, 2},
	}
	nb := basicnode.Prototype.Any.NewBuilder()
	require.NoError(t, Assemble(doc, nb))

	out, err := FromNode(nb.Build())
	require.NoError(t, err)
	assert.Equal(t, Document{
		"id":    "a",
		"count": int64(3),
		"ratio": 0.5,
		"ok":    true,
		"tags":  []any{"x", int64(2)},
		"meta":  map[string]any{"k": nil},
		"raw":   []byte{1, 2},
	}, out)
}

func TestAssembleSortsFields(t *testing.T) {
	nb := basicnode.Prototype.Any.NewBuilder()
	require.NoError(t, Assemble(Document{"id": "a", "b": 1, "a": 2}, nb))

	var buf bytes.Buffer
	require.NoError(t, dagjson.Encode(nb.Build(), &buf))
	assert.Equal(t, `{"a":2,"b":1,"id":"a"}`, buf.String())
}

func TestAssembleInvalid(t *testing.T) {
	nb := basicnode.Prototype.Any.NewBuilder()
	err := Assemble(Document{"ch": make(chan int)}, nb)
	assert.Error(t, err)
}

func TestFromNodeNotMap(t *testing.T) {
	_, err := FromNode(basicnode.NewString("a"))
	assert.Error(t, err)
}
