package atom

import "sort"

// Datum is one column's value in one row: a set of keys, or (when Values is
// non-nil) a map of keys to values. Keys are always kept sorted and unique;
// for maps, Values[i] is paired with Keys[i].
type Datum struct {
	Keys   []Atom
	Values []Atom // nil for a set
}

// EmptySet returns the empty set datum.
func EmptySet() Datum { return Datum{} }

// EmptyMap returns the empty map datum.
func EmptyMap() Datum { return Datum{Values: []Atom{}} }

func (d Datum) IsMap() bool { return d.Values != nil }
func (d Datum) Len() int    { return len(d.Keys) }

// NewSet builds a sorted, deduplicated set datum from the given keys.
func NewSet(keys []Atom) Datum {
	d := Datum{Keys: append([]Atom(nil), keys...)}
	d.sortSet()
	return d
}

// NewMap builds a sorted map datum from key/value pairs. If the same key
// appears more than once, the last occurrence wins, matching the overlay
// semantics `set COL:KEY=VALUE` relies on.
func NewMap(keys, values []Atom) Datum {
	idx := make(map[string]int, len(keys))
	order := make([]Atom, 0, len(keys))
	vals := make(map[string]Atom, len(keys))
	for i, k := range keys {
		ks := k.String()
		if _, ok := idx[ks]; !ok {
			order = append(order, k)
		}
		idx[ks] = i
		vals[ks] = values[i]
	}
	d := Datum{Keys: order, Values: make([]Atom, len(order))}
	for i, k := range order {
		d.Values[i] = vals[k.String()]
	}
	d.sortMap()
	return d
}

func (d *Datum) sortSet() {
	sort.Slice(d.Keys, func(i, j int) bool { return Compare3Way(d.Keys[i], d.Keys[j]) < 0 })
	out := d.Keys[:0:0]
	for i, k := range d.Keys {
		if i == 0 || Compare3Way(out[len(out)-1], k) != 0 {
			out = append(out, k)
		}
	}
	d.Keys = out
}

func (d *Datum) sortMap() {
	idxs := make([]int, len(d.Keys))
	for i := range idxs {
		idxs[i] = i
	}
	sort.Slice(idxs, func(i, j int) bool { return Compare3Way(d.Keys[idxs[i]], d.Keys[idxs[j]]) < 0 })
	keys := make([]Atom, len(idxs))
	vals := make([]Atom, len(idxs))
	for i, idx := range idxs {
		keys[i] = d.Keys[idx]
		vals[i] = d.Values[idx]
	}
	d.Keys, d.Values = keys, vals
}

// DatumCompare3Way orders two datums of the same shape lexicographically:
// by Keys element-wise, then by Values element-wise for maps, with a
// shorter datum ordering before a longer one that agrees on their common
// prefix. Used by the evaluator's non-set operators (spec.md §4.E), which
// are ordinarily applied to scalar columns (Len()==1 on both sides) but
// are not restricted to them.
func DatumCompare3Way(a, b Datum) int {
	for i := 0; i < a.Len() && i < b.Len(); i++ {
		if c := Compare3Way(a.Keys[i], b.Keys[i]); c != 0 {
			return c
		}
		if a.IsMap() && b.IsMap() {
			if c := Compare3Way(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1
	case a.Len() > b.Len():
		return 1
	default:
		return 0
	}
}

// Lookup returns the value paired with key in a map datum.
func (d Datum) Lookup(key Atom) (Atom, bool) {
	for i, k := range d.Keys {
		if Compare3Way(k, key) == 0 {
			return d.Values[i], true
		}
	}
	return Atom{}, false
}

// Contains reports whether key is present (set membership, or map key
// membership).
func (d Datum) Contains(key Atom) bool {
	for _, k := range d.Keys {
		if Compare3Way(k, key) == 0 {
			return true
		}
	}
	return false
}

// Equal is set/map equality independent of internal ordering (both sides
// are always stored sorted, so this is a direct structural comparison).
func (d Datum) Equal(o Datum) bool {
	if d.IsMap() != o.IsMap() || d.Len() != o.Len() {
		return false
	}
	for i := range d.Keys {
		if !Equal(d.Keys[i], o.Keys[i]) {
			return false
		}
		if d.IsMap() && !Equal(d.Values[i], o.Values[i]) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every element of d is present in o (key-only
// membership for maps, matching the {<=} / {>=} operators in spec.md §4.E).
func (d Datum) SubsetOf(o Datum) bool {
	for _, k := range d.Keys {
		if !o.Contains(k) {
			return false
		}
	}
	return true
}

// Union merges o into d. For a set this is plain union of keys. For a map,
// keys present in both take o's value (the "single-pair union overlay"
// spec.md §4.F describes for `set COL:KEY=VALUE`).
func (d Datum) Union(o Datum) Datum {
	if !d.IsMap() {
		return NewSet(append(append([]Atom(nil), d.Keys...), o.Keys...))
	}
	keys := append([]Atom(nil), d.Keys...)
	vals := append([]Atom(nil), d.Values...)
	keys = append(keys, o.Keys...)
	vals = append(vals, o.Values...)
	return NewMap(keys, vals)
}

// Subtract removes every element of o from d. For a map, matching is by
// key: remove-by-key, used when `remove` falls back to parsing its
// argument as a set of keys (spec.md §4.F, DESIGN NOTES open question).
func (d Datum) Subtract(o Datum) Datum {
	keys := make([]Atom, 0, len(d.Keys))
	vals := make([]Atom, 0, len(d.Keys))
	for i, k := range d.Keys {
		if o.Contains(k) {
			continue
		}
		keys = append(keys, k)
		if d.IsMap() {
			vals = append(vals, d.Values[i])
		}
	}
	if d.IsMap() {
		return NewMap(keys, vals)
	}
	return NewSet(keys)
}
