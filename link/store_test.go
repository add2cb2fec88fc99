package link

import (
	"context"
	"testing"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/entity/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	links := NewStore(mem)

	node, err := qp.BuildMap(basicnode.Prototype.Any, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "name", qp.String("Bob"))
	})
	require.NoError(t, err)

	lnk, err := links.Store(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, 1, links.Blocks())

	computed, err := links.Compute(node)
	require.NoError(t, err)
	assert.Equal(t, lnk.String(), computed.String())

	loaded, err := links.Load(ctx, lnk, basicnode.Prototype.Any)
	require.NoError(t, err)
	assert.True(t, datamodel.DeepEqual(node, loaded))
}

func TestGetNodeFollowsLinks(t *testing.T) {
	ctx := context.Background()
	links := NewStore(storage.NewMemory())

	child, err := qp.BuildMap(basicnode.Prototype.Any, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "name", qp.String("Bob"))
	})
	require.NoError(t, err)

	childLink, err := links.Store(ctx, child)
	require.NoError(t, err)

	parent, err := qp.BuildMap(basicnode.Prototype.Any, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "child", qp.Link(childLink))
	})
	require.NoError(t, err)

	name, err := links.GetNode(ctx, datamodel.ParsePath("child/name"), parent)
	require.NoError(t, err)

	value, err := name.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Bob", value)
}

func TestLoadMissing(t *testing.T) {
	ctx := context.Background()
	links := NewStore(storage.NewMemory())

	lnk, err := links.Compute(basicnode.NewString("missing"))
	require.NoError(t, err)

	_, err = links.Load(ctx, lnk, basicnode.Prototype.Any)
	assert.Error(t, err)
}
