// Package inspect encodes entity states as content addressed IPLD data.
//
// A snapshot is encoded as a map with the ordered ids and a map from id to
// the link of each record. Records are stored as separate blocks, so
// records shared between snapshots are stored once.
package inspect

import (
	"cmp"
	"context"
	"fmt"
	"reflect"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/entity"
	"github.com/nasdf/entity/link"
	"github.com/nasdf/entity/storage"
)

const (
	// IDsField is the name of the field holding the ordered ids.
	IDsField = "ids"
	// EntitiesField is the name of the field holding the record links.
	EntitiesField = "entities"
)

// EncodeFunc writes a record to the given assembler.
type EncodeFunc[V any] func(V, datamodel.NodeAssembler) error

// Linker stores nodes and returns their links.
type Linker interface {
	Store(ctx context.Context, node datamodel.Node) (datamodel.Link, error)
}

// Encode returns the node for the given state, storing every record with links.
func Encode[K cmp.Ordered, V any](ctx context.Context, links Linker, state *entity.State[K, V], enc EncodeFunc[V]) (datamodel.Node, error) {
	records := make(map[string]datamodel.Link, state.Len())
	for id, v := range state.All() {
		nb := basicnode.Prototype.Any.NewBuilder()
		if err := enc(v, nb); err != nil {
			return nil, fmt.Errorf("record %v: %w", id, err)
		}
		lnk, err := links.Store(ctx, nb.Build())
		if err != nil {
			return nil, err
		}
		records[KeyString(id)] = lnk
	}
	return qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, IDsField, qp.List(int64(state.Len()), func(la datamodel.ListAssembler) {
			for id := range state.All() {
				qp.ListEntry(la, keyNode(id))
			}
		}))
		qp.MapEntry(ma, EntitiesField, qp.Map(int64(state.Len()), func(ma datamodel.MapAssembler) {
			for id := range state.All() {
				key := KeyString(id)
				qp.MapEntry(ma, key, qp.Link(records[key]))
			}
		}))
	})
}

// Fingerprint returns the content id of the encoded state.
//
// States holding the same records in the same order have the same
// fingerprint.
func Fingerprint[K cmp.Ordered, V any](ctx context.Context, state *entity.State[K, V], enc EncodeFunc[V]) (cid.Cid, error) {
	links := link.NewStore(storage.NewMemory())
	node, err := Encode(ctx, links, state, enc)
	if err != nil {
		return cid.Undef, err
	}
	lnk, err := links.Compute(node)
	if err != nil {
		return cid.Undef, err
	}
	return lnk.(cidlink.Link).Cid, nil
}

// KeyString returns the map key used for the given id.
func KeyString[K cmp.Ordered](id K) string {
	return fmt.Sprint(id)
}

func keyNode[K cmp.Ordered](id K) qp.Assemble {
	v := reflect.ValueOf(id)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return qp.Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return qp.Int(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return qp.Float(v.Float())
	default:
		return qp.String(v.String())
	}
}

// Inline returns the node for the given state with records embedded
// instead of linked.
func Inline[K cmp.Ordered, V any](state *entity.State[K, V], enc EncodeFunc[V]) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, IDsField, qp.List(int64(state.Len()), func(la datamodel.ListAssembler) {
			for id := range state.All() {
				qp.ListEntry(la, keyNode(id))
			}
		}))
		qp.MapEntry(ma, EntitiesField, qp.Map(int64(state.Len()), func(ma datamodel.MapAssembler) {
			for id, v := range state.All() {
				qp.MapEntry(ma, KeyString(id), func(na datamodel.NodeAssembler) {
					if err := enc(v, na); err != nil {
						panic(fmt.Errorf("record %v: %w", id, err))
					}
				})
			}
		}))
	})
}
