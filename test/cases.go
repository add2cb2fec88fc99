// Package test contains scenario cases replayed against document collections.
package test

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"

	"github.com/nasdf/entity"
	"github.com/nasdf/entity/document"
	"gopkg.in/yaml.v3"
)

//go:embed cases
var casesFS embed.FS

// Case is a sequence of operations applied to a document collection.
type Case struct {
	// Description is a simple description for the case.
	Description string `yaml:"description"`
	// Sort is the field the collection is sorted by, if any.
	Sort string `yaml:"sort"`
	// State contains the records of the initial state.
	State []map[string]any `yaml:"state"`
	// Operations is a list of all operations to run in this case.
	Operations []Operation `yaml:"operations"`
}

// Operation is a single mutation and its expected outcome.
type Operation struct {
	// Op is the name of the adapter operation.
	Op string `yaml:"op"`
	// Records are the input records of insert and set operations.
	Records []map[string]any `yaml:"records"`
	// IDs are the input ids of remove operations.
	IDs []string `yaml:"ids"`
	// Updates are the input updates of update operations.
	Updates []UpdateSpec `yaml:"updates"`
	// Where matches records by field value for removeManyFunc.
	Where map[string]any `yaml:"where"`
	// Patch is applied to every record by map.
	Patch map[string]any `yaml:"patch"`
	// Change is the expected change class.
	Change *entity.Change `yaml:"change"`
	// Expect contains the expected ids in order.
	Expect []string `yaml:"expect"`
	// Errors is the expected number of usage errors.
	Errors int `yaml:"errors"`
}

// UpdateSpec is an update addressed to one record.
type UpdateSpec struct {
	ID    string         `yaml:"id"`
	Patch map[string]any `yaml:"patch"`
}

// CasePaths returns a list of all embedded case file paths.
func CasePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(casesFS, "cases", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadCase loads and parses an embedded case file.
func LoadCase(path string) (*Case, error) {
	data, err := fs.ReadFile(casesFS, path)
	if err != nil {
		return nil, err
	}
	return ParseCase(data)
}

// ParseCase parses a case from yaml.
func ParseCase(data []byte) (*Case, error) {
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Step is the outcome of one operation.
type Step struct {
	Op     string
	Change entity.Change
	State  *entity.State[string, document.Document]
	Errors []error
}

// Replay applies every operation of the case in order.
//
// Usage errors reported by the adapter are attached to the step that
// raised them.
func (c *Case) Replay(opts ...entity.Option[string, document.Document]) ([]Step, error) {
	var errs []error
	opts = append(opts, entity.WithErrorHandler[string, document.Document](func(err error) {
		errs = append(errs, err)
	}))
	if c.Sort != "" {
		opts = append(opts, entity.WithSortComparer[string, document.Document](document.CompareField(c.Sort)))
	}
	a, err := document.Adapter(opts...)
	if err != nil {
		return nil, err
	}

	state := a.StateOf(documents(c.State)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid initial state: %w", errs[0])
	}

	steps := make([]Step, 0, len(c.Operations))
	for i, op := range c.Operations {
		errs = nil
		next, change, err := apply(a, state, op)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Op, err)
		}
		steps = append(steps, Step{
			Op:     op.Op,
			Change: change,
			State:  next,
			Errors: errs,
		})
		state = next
	}
	return steps, nil
}

type docState = *entity.State[string, document.Document]

func apply(a *entity.Adapter[string, document.Document], s docState, op Operation) (docState, entity.Change, error) {
	records := documents(op.Records)
	switch op.Op {
	case "addOne":
		if len(records) != 1 {
			return nil, 0, fmt.Errorf("addOne needs one record")
		}
		next, change := a.AddOne(s, records[0])
		return next, change, nil
	case "addMany":
		next, change := a.AddMany(s, records)
		return next, change, nil
	case "addAll":
		next, change := a.AddAll(s, records)
		return next, change, nil
	case "setOne":
		if len(records) != 1 {
			return nil, 0, fmt.Errorf("setOne needs one record")
		}
		next, change := a.SetOne(s, records[0])
		return next, change, nil
	case "setMany":
		next, change := a.SetMany(s, records)
		return next, change, nil
	case "setAll":
		next, change := a.SetAll(s, records)
		return next, change, nil
	case "upsertOne":
		if len(records) != 1 {
			return nil, 0, fmt.Errorf("upsertOne needs one record")
		}
		next, change := a.UpsertOne(s, records[0])
		return next, change, nil
	case "upsertMany":
		next, change := a.UpsertMany(s, records)
		return next, change, nil
	case "removeOne":
		if len(op.IDs) != 1 {
			return nil, 0, fmt.Errorf("removeOne needs one id")
		}
		next, change := a.RemoveOne(s, op.IDs[0])
		return next, change, nil
	case "removeMany":
		next, change := a.RemoveMany(s, op.IDs)
		return next, change, nil
	case "removeManyFunc":
		next, change := a.RemoveManyFunc(s, func(d document.Document) bool {
			for k, v := range op.Where {
				if !reflect.DeepEqual(d[k], v) {
					return false
				}
			}
			return true
		})
		return next, change, nil
	case "removeAll":
		next, change := a.RemoveAll(s)
		return next, change, nil
	case "updateOne", "updateMany":
		updates, err := parseUpdates(op.Updates)
		if err != nil {
			return nil, 0, err
		}
		if op.Op == "updateOne" {
			if len(updates) != 1 {
				return nil, 0, fmt.Errorf("updateOne needs one update")
			}
			next, change := a.UpdateOne(s, updates[0])
			return next, change, nil
		}
		next, change := a.UpdateMany(s, updates)
		return next, change, nil
	case "map":
		patch, err := document.ParsePatch(op.Patch)
		if err != nil {
			return nil, 0, err
		}
		next, change := a.Map(s, patch)
		return next, change, nil
	default:
		return nil, 0, fmt.Errorf("unknown operation %q", op.Op)
	}
}

func parseUpdates(specs []UpdateSpec) ([]entity.Update[string, document.Document], error) {
	updates := make([]entity.Update[string, document.Document], 0, len(specs))
	for _, spec := range specs {
		patch, err := document.ParsePatch(spec.Patch)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", spec.ID, err)
		}
		updates = append(updates, entity.Update[string, document.Document]{ID: spec.ID, Changes: patch})
	}
	return updates, nil
}

func documents(records []map[string]any) []document.Document {
	docs := make([]document.Document, len(records))
	for i, r := range records {
		docs[i] = document.Document(r)
	}
	return docs
}
