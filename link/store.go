// Package link stores IPLD nodes by content address.
package link

import (
	"context"

	"github.com/ipfs/go-cid"
	_ "github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/linking"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/traversal"
	"github.com/multiformats/go-multicodec"
	"github.com/nasdf/entity/storage"
)

// Prototype is the prototype of every link created by a Store.
var Prototype = cidlink.LinkPrototype{Prefix: cid.Prefix{
	Version:  1,
	Codec:    uint64(multicodec.DagCbor),
	MhType:   uint64(multicodec.Sha2_256),
	MhLength: -1,
}}

// Store is a content addressable data store.
type Store struct {
	lsys    linking.LinkSystem
	storage storage.Storage
}

// NewStore returns a new Store that uses the given storage to read and write content addressable data.
func NewStore(store storage.Storage) *Store {
	lsys := cidlink.DefaultLinkSystem()
	lsys.SetReadStorage(store)
	lsys.SetWriteStorage(store)

	return &Store{
		lsys:    lsys,
		storage: store,
	}
}

// Blocks returns the number of blocks in the underlying storage, or -1 if
// the storage cannot count them.
func (s *Store) Blocks() int {
	return storage.Count(s.storage)
}

// Load returns the node matching the given link and built using the given prototype.
func (s *Store) Load(ctx context.Context, lnk datamodel.Link, np datamodel.NodePrototype) (datamodel.Node, error) {
	return s.lsys.Load(linking.LinkContext{Ctx: ctx}, lnk, np)
}

// Store writes the given node to the storage and returns its link.
func (s *Store) Store(ctx context.Context, node datamodel.Node) (datamodel.Link, error) {
	return s.lsys.Store(linking.LinkContext{Ctx: ctx}, Prototype, node)
}

// Compute returns the link of the given node without storing it.
func (s *Store) Compute(node datamodel.Node) (datamodel.Link, error) {
	return s.lsys.ComputeLink(Prototype, node)
}

// Traversal returns a traversal.Progress that follows links through this store.
func (s *Store) Traversal(ctx context.Context) traversal.Progress {
	return traversal.Progress{Cfg: &traversal.Config{
		Ctx:        ctx,
		LinkSystem: s.lsys,
		LinkTargetNodePrototypeChooser: func(datamodel.Link, linking.LinkContext) (datamodel.NodePrototype, error) {
			return basicnode.Prototype.Any, nil
		},
	}}
}

// GetNode returns the node at the given path starting from the given node.
func (s *Store) GetNode(ctx context.Context, path datamodel.Path, node datamodel.Node) (datamodel.Node, error) {
	return s.Traversal(ctx).Get(node, path)
}
