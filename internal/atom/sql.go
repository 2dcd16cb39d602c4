package atom

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value implements driver.Valuer so a Datum can be written directly as a
// jsonb column by internal/idl/postgres.go, grounded on the teacher's
// pkg/schema/schema.go Schema.Value.
func (d Datum) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, the read-side counterpart of Value.
func (d *Datum) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Datum{}
		return nil
	case []byte:
		if len(v) == 0 || string(v) == "null" {
			*d = Datum{}
			return nil
		}
		return json.Unmarshal(v, d)
	case string:
		if v == "" || v == "null" {
			*d = Datum{}
			return nil
		}
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("atom: cannot scan %T into Datum", src)
	}
}
