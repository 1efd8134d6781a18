// Package changes reports which fields differ between two versions of a record.
package changes

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"github.com/r3labs/diff/v3"
)

// Differ lists changed top-level fields. Field names come from `diff`
// struct tags; fields tagged `diff:"-"` are ignored.
type Differ struct {
	d *diff.Differ
}

// New builds a Differ that compares uuid.UUID values as leaves.
func New() (*Differ, error) {
	d, err := diff.NewDiffer(diff.CustomValueDiffers(uuidDiffer{}), diff.SliceOrdering(true))
	if err != nil {
		return nil, fmt.Errorf("changes.New: %w", err)
	}
	return &Differ{d: d}, nil
}

// Fields returns the sorted, de-duplicated names of the fields that differ
// between before and after. Nested changes report their top-level field.
func (c *Differ) Fields(before, after any) ([]string, error) {
	cl, err := c.d.Diff(before, after)
	if err != nil {
		return nil, fmt.Errorf("changes.Differ.Fields: %w", err)
	}
	seen := make(map[string]struct{}, len(cl))
	out := make([]string, 0, len(cl))
	for _, ch := range cl {
		if len(ch.Path) == 0 {
			continue
		}
		name := ch.Path[0]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// uuidDiffer stops the differ from descending into the UUID byte array.
type uuidDiffer struct{}

func (uuidDiffer) Match(a, b reflect.Value) bool {
	isUUID := func(v reflect.Value) bool { return v.IsValid() && v.Type() == uuidType }
	return (isUUID(a) && isUUID(b)) ||
		(a.Kind() == reflect.Invalid && isUUID(b)) ||
		(b.Kind() == reflect.Invalid && isUUID(a))
}

func (uuidDiffer) Diff(_ diff.DiffType, _ diff.DiffFunc, cl *diff.Changelog, path []string, a, b reflect.Value, _ interface{}) error {
	if !a.IsValid() || !b.IsValid() {
		if a.IsValid() != b.IsValid() {
			var from, to interface{}
			if a.IsValid() {
				from = a.Interface()
			}
			if b.IsValid() {
				to = b.Interface()
			}
			cl.Add(diff.UPDATE, path, from, to)
		}
		return nil
	}
	if a.Interface().(uuid.UUID) != b.Interface().(uuid.UUID) {
		cl.Add(diff.UPDATE, path, a.Interface(), b.Interface())
	}
	return nil
}

func (uuidDiffer) InsertParentDiffer(func(path []string, a, b reflect.Value, p interface{}) error) {}
