package inspect

import (
	"cmp"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/entity"
	"github.com/nasdf/entity/link"
)

// Entry describes one recorded snapshot.
type Entry struct {
	// Seq is the position of the snapshot in the journal.
	Seq int
	// Change is the change that produced the snapshot.
	Change entity.Change
	// Total is the number of records in the snapshot.
	Total int
	// Link is the link of the encoded snapshot.
	Link datamodel.Link
}

// Journal keeps the most recent snapshots of a collection.
//
// Snapshots are held in the link store only, so a journal is lost with the
// process that owns it.
type Journal[K cmp.Ordered, V any] struct {
	links *link.Store
	enc   EncodeFunc[V]
	limit int

	mu      sync.Mutex
	seq     int
	entries []Entry
}

// NewJournal returns a journal keeping at most limit entries.
//
// A limit of zero or less keeps every entry.
func NewJournal[K cmp.Ordered, V any](links *link.Store, enc EncodeFunc[V], limit int) *Journal[K, V] {
	return &Journal[K, V]{
		links: links,
		enc:   enc,
		limit: limit,
	}
}

// Record encodes and stores the given state.
func (j *Journal[K, V]) Record(ctx context.Context, state *entity.State[K, V], change entity.Change) (Entry, error) {
	node, err := Encode(ctx, j.links, state, j.enc)
	if err != nil {
		return Entry{}, err
	}
	lnk, err := j.links.Store(ctx, node)
	if err != nil {
		return Entry{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entry := Entry{
		Seq:    j.seq,
		Change: change,
		Total:  state.Len(),
		Link:   lnk,
	}
	j.seq++
	j.entries = append(j.entries, entry)
	if j.limit > 0 && len(j.entries) > j.limit {
		j.entries = slices.Delete(j.entries, 0, len(j.entries)-j.limit)
	}
	return entry, nil
}

// Entries returns the recorded entries from oldest to newest.
func (j *Journal[K, V]) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

// Node returns the encoded snapshot of the given entry.
func (j *Journal[K, V]) Node(ctx context.Context, entry Entry) (datamodel.Node, error) {
	return j.links.Load(ctx, entry.Link, basicnode.Prototype.Any)
}

// Entity returns the encoded record with the given id in the snapshot of the entry.
func (j *Journal[K, V]) Entity(ctx context.Context, entry Entry, id K) (datamodel.Node, error) {
	root, err := j.Node(ctx, entry)
	if err != nil {
		return nil, err
	}
	path := datamodel.NewPath([]datamodel.PathSegment{
		datamodel.PathSegmentOfString(EntitiesField),
		datamodel.PathSegmentOfString(KeyString(id)),
	})
	return j.links.GetNode(ctx, path, root)
}

// WriteJSON writes the node as dag-json, following no links.
//
// Map keys are written in lexical order, so the output does not depend on
// the order entries were assembled in.
func WriteJSON(w io.Writer, node datamodel.Node) error {
	return dagjson.Encode(node, w)
}
