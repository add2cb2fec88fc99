package inspect

import (
	"fmt"
	"reflect"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
)

var (
	goTypeTime    = reflect.TypeOf(time.Time{})
	goTypeCid     = reflect.TypeOf(cid.Cid{})
	goTypeCidLink = reflect.TypeOf(cidlink.Link{})
	goTypeLink    = reflect.TypeOf((*datamodel.Link)(nil)).Elem()
	goTypeNode    = reflect.TypeOf((*datamodel.Node)(nil)).Elem()
)

// timeConverter encodes time.Time values as RFC 3339 strings.
var timeConverter = bindnode.TypedStringConverter((*time.Time)(nil),
	func(s string) (interface{}, error) {
		return time.Parse(time.RFC3339Nano, s)
	},
	func(v interface{}) (string, error) {
		switch t := v.(type) {
		case *time.Time:
			return t.Format(time.RFC3339Nano), nil
		case time.Time:
			return t.Format(time.RFC3339Nano), nil
		}
		return "", fmt.Errorf("cannot convert %T to time", v)
	},
)

// Bind returns an EncodeFunc that derives the IPLD form of V from its Go type.
//
// Structs encode as maps keyed by field name, slices as lists, every
// integer kind as an int and time.Time as an RFC 3339 string. Pointer
// fields and list values are nullable. Go maps, channels and funcs are not
// supported.
func Bind[V any]() EncodeFunc[V] {
	typ, inferErr := newBinder().infer(reflect.TypeOf((*V)(nil)).Elem())
	return func(v V, na datamodel.NodeAssembler) (err error) {
		if inferErr != nil {
			return fmt.Errorf("cannot bind %T: %w", v, inferErr)
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("cannot bind %T: %v", v, r)
			}
		}()
		node := bindnode.Wrap(&v, typ, timeConverter)
		return na.AssignNode(node.Representation())
	}
}

// binder accumulates the schema types inferred for a Go type.
type binder struct {
	ts       schema.TypeSystem
	types    map[reflect.Type]schema.Type
	scalars  map[string]schema.Type
	names    map[string]int
	visiting map[reflect.Type]bool
}

func newBinder() *binder {
	b := &binder{
		types:    make(map[reflect.Type]schema.Type),
		scalars:  make(map[string]schema.Type),
		names:    make(map[string]int),
		visiting: make(map[reflect.Type]bool),
	}
	b.ts.Init()
	return b
}

// spawn adds a new type named after base to the type system.
func (b *binder) spawn(base string, fn func(name string) schema.Type) schema.Type {
	name := base
	if n := b.names[base]; n > 0 {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	b.names[base]++
	typ := fn(name)
	b.ts.Accumulate(typ)
	return typ
}

// scalar returns the shared type with the given name.
func (b *binder) scalar(name string, fn func(name string) schema.Type) schema.Type {
	if typ, ok := b.scalars[name]; ok {
		return typ
	}
	typ := b.spawn(name, fn)
	b.scalars[name] = typ
	return typ
}

func (b *binder) infer(typ reflect.Type) (schema.Type, error) {
	if t, ok := b.types[typ]; ok {
		return t, nil
	}
	if b.visiting[typ] {
		return nil, fmt.Errorf("recursive type %s", typ)
	}
	b.visiting[typ] = true
	defer delete(b.visiting, typ)

	t, err := b.inferKind(typ)
	if err != nil {
		return nil, err
	}
	b.types[typ] = t
	return t, nil
}

func (b *binder) inferKind(typ reflect.Type) (schema.Type, error) {
	switch typ {
	case goTypeTime:
		return b.scalar("Time", func(n string) schema.Type { return schema.SpawnString(n) }), nil
	case goTypeCid, goTypeCidLink, goTypeLink:
		return b.scalar("Link", func(n string) schema.Type { return schema.SpawnLink(n) }), nil
	case goTypeNode:
		return b.scalar("Any", func(n string) schema.Type { return schema.SpawnAny(n) }), nil
	}

	switch typ.Kind() {
	case reflect.Bool:
		return b.scalar("Bool", func(n string) schema.Type { return schema.SpawnBool(n) }), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return b.scalar("Int", func(n string) schema.Type { return schema.SpawnInt(n) }), nil
	case reflect.Float32, reflect.Float64:
		return b.scalar("Float", func(n string) schema.Type { return schema.SpawnFloat(n) }), nil
	case reflect.String:
		return b.scalar("String", func(n string) schema.Type { return schema.SpawnString(n) }), nil
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return b.scalar("Bytes", func(n string) schema.Type { return schema.SpawnBytes(n) }), nil
		}
		elem := typ.Elem()
		nullable := elem.Kind() == reflect.Ptr
		if nullable {
			elem = elem.Elem()
		}
		et, err := b.infer(elem)
		if err != nil {
			return nil, err
		}
		return b.spawn("List_"+et.Name(), func(n string) schema.Type {
			return schema.SpawnList(n, et.Name(), nullable)
		}), nil
	case reflect.Struct:
		fields := make([]schema.StructField, typ.NumField())
		for i := range fields {
			field := typ.Field(i)
			if !field.IsExported() {
				return nil, fmt.Errorf("unexported field %s.%s", typ, field.Name)
			}
			ftyp := field.Type
			nullable := ftyp.Kind() == reflect.Ptr
			if nullable {
				ftyp = ftyp.Elem()
			}
			ft, err := b.infer(ftyp)
			if err != nil {
				return nil, err
			}
			fields[i] = schema.SpawnStructField(field.Name, ft.Name(), false, nullable)
		}
		name := typ.Name()
		if name == "" {
			name = "Struct"
		}
		return b.spawn(name, func(n string) schema.Type {
			return schema.SpawnStruct(n, fields, nil)
		}), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", typ.Kind())
}
