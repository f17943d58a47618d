package sjoin

import (
	"fmt"
	"sort"
)

// DefaultGeometryColumn is the column name under which a collection's
// geometry is addressed in column configuration.
const DefaultGeometryColumn = "geometry"

// Collection is an immutable set of GeoJSON features with a declared
// identity column. The attribute schema is derived from the union of the
// features' property keys, so column-presence checks reflect what the data
// actually carries.
type Collection struct {
	Name           string
	IDColumn       string
	GeometryColumn string
	Features       []*Feature

	columns map[string]struct{}
}

// NewCollection builds a Collection over the given features. The identity
// column must be non-empty; the geometry column defaults to
// DefaultGeometryColumn.
func NewCollection(name, idColumn string, features []*Feature) (*Collection, error) {
	if idColumn == "" {
		return nil, fmt.Errorf("collection %q: id column must not be empty", name)
	}

	cols := make(map[string]struct{})
	for _, f := range features {
		for k := range f.Properties {
			cols[k] = struct{}{}
		}
	}

	return &Collection{
		Name:           name,
		IDColumn:       idColumn,
		GeometryColumn: DefaultGeometryColumn,
		Features:       features,
		columns:        cols,
	}, nil
}

// LoadCollection reads a GeoJSON FeatureCollection from a file and wraps it
// in a Collection with the given identity column.
func LoadCollection(path, name, idColumn string) (*Collection, error) {
	fc, err := LoadFeatureCollection(path)
	if err != nil {
		return nil, fmt.Errorf("loading collection %q: %w", name, err)
	}
	return NewCollection(name, idColumn, fc.Features)
}

// HasColumn reports whether the named column exists in the collection:
// either the identity column, the geometry column, or an attribute column
// present on at least one feature.
func (c *Collection) HasColumn(name string) bool {
	if name == c.IDColumn || name == c.GeometryColumn {
		return true
	}
	_, ok := c.columns[name]
	return ok
}

// Columns returns the attribute column names in sorted order, with the
// identity column always included.
func (c *Collection) Columns() []string {
	cols := make([]string, 0, len(c.columns)+1)
	for k := range c.columns {
		cols = append(cols, k)
	}
	if _, ok := c.columns[c.IDColumn]; !ok {
		cols = append(cols, c.IDColumn)
	}
	sort.Strings(cols)
	return cols
}

// Len returns the number of features in the collection.
func (c *Collection) Len() int {
	return len(c.Features)
}

// IDOf extracts a feature's identity value as a string. Non-string values
// are formatted with their default representation. The bool return is false
// when the identity property is absent.
func (c *Collection) IDOf(f *Feature) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	v, ok := f.Properties[c.IDColumn]
	if !ok {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return s, true
	}
	return fmt.Sprint(v), true
}
