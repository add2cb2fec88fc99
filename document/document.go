// Package document implements schemaless records for entity collections.
package document

import (
	"fmt"
	"maps"
	"reflect"
	"strconv"

	"github.com/google/uuid"
	"github.com/nasdf/entity"
)

// IDField is the name of the field holding the document id.
const IDField = "id"

// Document is a record made of named fields.
//
// Documents are treated as immutable once they are stored in a state.
// Patches and Merge always return a new document.
type Document map[string]any

// New returns a copy of the given fields with a random id assigned when
// the fields do not contain one.
func New(fields map[string]any) Document {
	doc := make(Document, len(fields)+1)
	maps.Copy(doc, fields)
	if doc.ID() == "" {
		doc[IDField] = uuid.NewString()
	}
	return doc
}

// ID returns the id of the document as a string.
//
// Integer ids are formatted in base 10. A missing id returns an empty
// string.
func (d Document) ID() string {
	switch v := d[IDField].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Key implements entity.Keyed.
func (d Document) Key() string {
	return d.ID()
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	return maps.Clone(d)
}

// Merge returns existing with the fields of incoming written over it.
func Merge(existing, incoming Document) Document {
	out := make(Document, len(existing)+len(incoming))
	maps.Copy(out, existing)
	maps.Copy(out, incoming)
	return out
}

// Equal returns true if both documents have deeply equal fields.
func Equal(a, b Document) bool {
	return reflect.DeepEqual(a, b)
}

// Adapter returns an entity adapter for documents.
//
// Upserts merge the fields of incoming documents into existing ones and
// Map compares documents with Equal unless other options are given.
func Adapter(opts ...entity.Option[string, Document]) (*entity.Adapter[string, Document], error) {
	defaults := []entity.Option[string, Document]{
		entity.WithMerge[string, Document](Merge),
		entity.WithEqual[string, Document](Equal),
	}
	return entity.New(append(defaults, opts...)...)
}
