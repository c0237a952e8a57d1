package liberty

import (
	"sort"

	"github.com/pdkit/libmerge/pkg/errors"
)

// Value is one node of a fragment tree: a scalar, a list, or a nested group.
// The concrete types are String, Int, Float, List, and *Group.
//
// Int and Float are distinct on purpose. The serializer renders integer
// tables as plain decimals and float tables in padded fixed-width form, so
// collapsing the two would change document bytes.
type Value interface {
	value()
}

// String is a text value. It is rendered in double quotes, so it must not
// itself contain a double quote.
type String string

// Int is an integer value from an integer JSON literal.
type Int int64

// Float is a floating-point value from a fractional or exponent JSON literal.
type Float float64

// List is an ordered sequence of values.
type List []Value

func (String) value() {}
func (Int) value()    {}
func (Float) value()  {}
func (List) value()   {}
func (*Group) value() {}

// Group is a set of uniquely named entries, the body of one Liberty group.
// Entry order is not tracked; the serializer defines its own total order, so
// two groups with equal entries always render identically.
type Group struct {
	entries map[string]Value
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{entries: make(map[string]Value)}
}

// Set adds an entry. Setting a key that is already present is a
// KEY_COLLISION error; fragments are merged under a disjointness guarantee
// and a silent overwrite would hide characterization conflicts.
func (g *Group) Set(key string, v Value) error {
	if _, ok := g.entries[key]; ok {
		return errors.New(errors.ErrCodeKeyCollision, "duplicate key: %s", key)
	}
	g.entries[key] = v
	return nil
}

// Get returns the entry for key.
func (g *Group) Get(key string) (Value, bool) {
	v, ok := g.entries[key]
	return v, ok
}

// Delete removes the entry for key if present.
func (g *Group) Delete(key string) {
	delete(g.entries, key)
}

// Len returns the number of entries.
func (g *Group) Len() int {
	return len(g.entries)
}

// Keys returns all entry keys in lexicographic order.
func (g *Group) Keys() []string {
	keys := make([]string, 0, len(g.entries))
	for k := range g.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
