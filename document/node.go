package document

import (
	"fmt"
	"slices"

	"github.com/ipld/go-ipld-prime/datamodel"
)

// Assemble writes the document to the given assembler as a map.
//
// Fields are written in sorted order.
func Assemble(doc Document, na datamodel.NodeAssembler) error {
	return assignMap(doc, na)
}

func assignValue(value any, na datamodel.NodeAssembler) error {
	switch v := value.(type) {
	case nil:
		return na.AssignNull()
	case bool:
		return na.AssignBool(v)
	case string:
		return na.AssignString(v)
	case []byte:
		return na.AssignBytes(v)
	case float32:
		return na.AssignFloat(float64(v))
	case float64:
		return na.AssignFloat(v)
	case []any:
		return assignList(v, na)
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return assignList(list, na)
	case Document:
		return assignMap(v, na)
	case map[string]any:
		return assignMap(v, na)
	case datamodel.Link:
		return na.AssignLink(v)
	}
	if n, ok := integer(value); ok {
		return na.AssignInt(n)
	}
	return fmt.Errorf("cannot assemble value of type %T", value)
}

func assignList(value []any, na datamodel.NodeAssembler) error {
	la, err := na.BeginList(int64(len(value)))
	if err != nil {
		return err
	}
	for _, v := range value {
		err := assignValue(v, la.AssembleValue())
		if err != nil {
			return err
		}
	}
	return la.Finish()
}

func assignMap(value map[string]any, na datamodel.NodeAssembler) error {
	ma, err := na.BeginMap(int64(len(value)))
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ea, err := ma.AssembleEntry(k)
		if err != nil {
			return err
		}
		err = assignValue(value[k], ea)
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
	}
	return ma.Finish()
}

func integer(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// FromNode returns the document for the given map node.
func FromNode(n datamodel.Node) (Document, error) {
	if n.Kind() != datamodel.Kind_Map {
		return nil, fmt.Errorf("cannot get document from %s", n.Kind().String())
	}
	fields, err := mapValue(n)
	if err != nil {
		return nil, err
	}
	return Document(fields), nil
}

// Value returns the go value for the given node.
func Value(n datamodel.Node) (any, error) {
	switch n.Kind() {
	case datamodel.Kind_Bool:
		return n.AsBool()
	case datamodel.Kind_Bytes:
		return n.AsBytes()
	case datamodel.Kind_Float:
		return n.AsFloat()
	case datamodel.Kind_Int:
		return n.AsInt()
	case datamodel.Kind_String:
		return n.AsString()
	case datamodel.Kind_Link:
		return n.AsLink()
	case datamodel.Kind_List:
		return listValue(n)
	case datamodel.Kind_Map:
		return mapValue(n)
	case datamodel.Kind_Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot get value from %s", n.Kind().String())
	}
}

func mapValue(n datamodel.Node) (map[string]any, error) {
	out := make(map[string]any, n.Length())
	for iter := n.MapIterator(); !iter.Done(); {
		k, v, err := iter.Next()
		if err != nil {
			return nil, err
		}
		key, err := k.AsString()
		if err != nil {
			return nil, err
		}
		val, err := Value(v)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func listValue(n datamodel.Node) ([]any, error) {
	out := make([]any, 0, n.Length())
	for iter := n.ListIterator(); !iter.Done(); {
		_, v, err := iter.Next()
		if err != nil {
			return nil, err
		}
		val, err := Value(v)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}
