package inspect

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/entity"
	"github.com/nasdf/entity/document"
	"github.com/nasdf/entity/link"
	"github.com/nasdf/entity/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int
	Label string
}

func (i item) Key() int {
	return i.ID
}

func TestEncode(t *testing.T) {
	ctx := context.Background()
	a := entity.MustNew[int, item]()
	s := a.StateOf(item{ID: 2, Label: "b"}, item{ID: 1, Label: "a"})
	links := link.NewStore(storage.NewMemory())

	node, err := Encode(ctx, links, s, Bind[item]())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, node))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `{"entities":{"1":{"/":`), out)
	assert.Contains(t, out, `"2":{"/":`)
	assert.True(t, strings.HasSuffix(out, `"ids":[2,1]}`), out)
}

func TestFingerprintDeterministic(t *testing.T) {
	ctx := context.Background()
	a := entity.MustNew[int, item]()

	replay := func() *entity.State[int, item] {
		s := a.InitialState()
		s, _ = a.AddMany(s, []item{{ID: 1}, {ID: 2}})
		s, _ = a.SetOne(s, item{ID: 1, Label: "one"})
		s, _ = a.RemoveOne(s, 2)
		return s
	}

	first, err := Fingerprint(ctx, replay(), Bind[item]())
	require.NoError(t, err)
	second, err := Fingerprint(ctx, replay(), Bind[item]())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := Fingerprint(ctx, a.StateOf(item{ID: 1}), Bind[item]())
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestFingerprintDependsOnOrder(t *testing.T) {
	ctx := context.Background()
	a := entity.MustNew[int, item]()

	ab, err := Fingerprint(ctx, a.StateOf(item{ID: 1}, item{ID: 2}), Bind[item]())
	require.NoError(t, err)
	ba, err := Fingerprint(ctx, a.StateOf(item{ID: 2}, item{ID: 1}), Bind[item]())
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

type shift struct {
	ID       uint16
	Slot     int
	Weight   float32
	Start    time.Time
	End      *time.Time
	Tags     []string
	Breaks   []int8
	Employee employee
}

type employee struct {
	Name string
	Rank int32
}

func TestBindIntegerAndTimeFields(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	v := shift{
		ID:       7,
		Slot:     3,
		Weight:   0.5,
		Start:    start,
		Tags:     []string{"am"},
		Breaks:   []int8{15, 30},
		Employee: employee{Name: "kim", Rank: 2},
	}

	nb := basicnode.Prototype.Any.NewBuilder()
	require.NoError(t, Bind[shift]()(v, nb))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nb.Build()))
	assert.Equal(t, `{"Breaks":[15,30],"Employee":{"Name":"kim","Rank":2},"End":null,"ID":7,"Slot":3,"Start":"2024-03-01T09:00:00Z","Tags":["am"],"Weight":0.5}`, buf.String())
}

func TestBindRecords(t *testing.T) {
	ctx := context.Background()
	a := entity.MustNew(entity.WithSelectID[uint16, shift](func(s shift) (uint16, bool) { return s.ID, s.ID != 0 }))
	s := a.StateOf(shift{ID: 1, Slot: 1}, shift{ID: 2, Slot: 2})

	_, err := Fingerprint(ctx, s, Bind[shift]())
	require.NoError(t, err)

	node, err := Inline(s, Bind[shift]())
	require.NoError(t, err)
	n, err := node.LookupByString(EntitiesField)
	require.NoError(t, err)
	rec, err := n.LookupByString("2")
	require.NoError(t, err)
	slot, err := rec.LookupByString("Slot")
	require.NoError(t, err)
	value, err := slot.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(2), value)
}

func TestBindMapField(t *testing.T) {
	type tagged struct {
		Tags map[string]string
	}
	nb := basicnode.Prototype.Any.NewBuilder()
	err := Bind[tagged]()(tagged{}, nb)
	assert.ErrorContains(t, err, "unsupported kind map")
}

func TestBindUnsupported(t *testing.T) {
	ctx := context.Background()
	a := entity.MustNew(entity.WithSelectID[int, chan int](func(chan int) (int, bool) { return 1, true }))
	s := a.StateOf(make(chan int))

	_, err := Fingerprint(ctx, s, Bind[chan int]())
	assert.Error(t, err)
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	links := link.NewStore(mem)
	journal := NewJournal[int, item](links, Bind[item](), 2)
	a := entity.MustNew[int, item]()

	s := a.InitialState()
	for _, id := range []int{1, 2, 3} {
		var change entity.Change
		s, change = a.AddOne(s, item{ID: id, Label: "x"})
		_, err := journal.Record(ctx, s, change)
		require.NoError(t, err)
	}

	entries := journal.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, 2, entries[1].Seq)
	assert.Equal(t, 3, entries[1].Total)
	assert.Equal(t, entity.Both, entries[1].Change)

	node, err := journal.Entity(ctx, entries[1], 3)
	require.NoError(t, err)
	label, err := node.LookupByString("Label")
	require.NoError(t, err)
	value, err := label.AsString()
	require.NoError(t, err)
	assert.Equal(t, "x", value)

	_, err = journal.Entity(ctx, entries[0], 3)
	assert.Error(t, err)
}

func TestJournalSharesRecords(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	journal := NewJournal[string, document.Document](link.NewStore(mem), document.Assemble, 0)
	a, err := document.Adapter()
	require.NoError(t, err)

	s := a.StateOf(document.Document{"id": "a", "n": 1}, document.Document{"id": "b", "n": 2})
	_, err = journal.Record(ctx, s, entity.Both)
	require.NoError(t, err)
	before := mem.Len()

	s, change := a.SetOne(s, document.Document{"id": "b", "n": 3})
	entry, err := journal.Record(ctx, s, change)
	require.NoError(t, err)

	assert.Equal(t, before+2, mem.Len())
	assert.Equal(t, entity.EntitiesOnly, entry.Change)

	root, err := journal.Node(ctx, entry)
	require.NoError(t, err)
	n, err := root.LookupByString(EntitiesField)
	require.NoError(t, err)
	assert.Equal(t, datamodel.Kind_Map, n.Kind())
	assert.Equal(t, int64(2), n.Length())
}

func TestInline(t *testing.T) {
	a, err := document.Adapter()
	require.NoError(t, err)
	s := a.StateOf(document.Document{"id": "b", "n": 1}, document.Document{"id": "a"})

	node, err := Inline(s, document.Assemble)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, node))
	assert.Equal(t, `{"entities":{"a":{"id":"a"},"b":{"id":"b","n":1}},"ids":["b","a"]}`, buf.String())
}
