// File: jsonb.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores an arbitrary JSON document in a jsonb column. Structured
// snapshot data (check lists, risk rankings, weather) round-trips through it
// byte-for-byte.
type JSONB json.RawMessage

// Value implements driver.Valuer.
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append(JSONB(nil), v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
	return nil
}

// MarshalJSON returns the stored document verbatim.
func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the document verbatim.
func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// MarshalJSONB encodes v into a JSONB column value.
func MarshalJSONB(v interface{}) (JSONB, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONB(data), nil
}
