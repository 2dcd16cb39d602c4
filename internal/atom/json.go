package atom

import (
	"encoding/json"
	"fmt"
)

// wireAtom is the JSON-on-the-wire shape persisted by the Postgres-backed
// IDL (internal/idl/postgres.go) for one row's jsonb column payload.
// datum_to_json (the printing primitive spec.md lists as an external
// collaborator) is assumed to produce something equivalent for the
// caller-facing CLI; this codec is only the storage format.
type wireAtom struct {
	Kind string `json:"kind"`
	V    string `json:"v"`
}

func (a Atom) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAtom{Kind: a.Kind.String(), V: a.String()})
}

func (a *Atom) UnmarshalJSON(b []byte) error {
	var w wireAtom
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var kind Kind
	switch w.Kind {
	case "string":
		kind = KindString
	case "integer":
		kind = KindInteger
	case "boolean":
		kind = KindBool
	case "uuid":
		kind = KindUUID
	default:
		return fmt.Errorf("atom: unknown wire kind %q", w.Kind)
	}
	if kind == KindString {
		var s string
		if err := json.Unmarshal([]byte(w.V), &s); err == nil {
			*a = String(s)
			return nil
		}
	}
	parsed, err := FromString(kind, w.V)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

type wireDatum struct {
	Keys   []Atom `json:"keys"`
	Values []Atom `json:"values,omitempty"`
}

func (d Datum) MarshalJSON() ([]byte, error) {
	w := wireDatum{Keys: d.Keys}
	if d.IsMap() {
		w.Values = d.Values
		if w.Values == nil {
			w.Values = []Atom{}
		}
	}
	if w.Keys == nil {
		w.Keys = []Atom{}
	}
	return json.Marshal(w)
}

func (d *Datum) UnmarshalJSON(b []byte) error {
	var w wireDatum
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	d.Keys = w.Keys
	d.Values = w.Values
	return nil
}
