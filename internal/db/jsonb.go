package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB wraps json.RawMessage with Scanner/Valuer for GORM JSONB columns.
// An empty value is stored as "{}".
type JSONB json.RawMessage

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB("{}")
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
	return nil
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return json.RawMessage(j).MarshalJSON()
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("JSONB: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// MarshalJSONB encodes v for storage in a JSONB column.
func MarshalJSONB(v any) (JSONB, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONB(raw), nil
}

// Decode unmarshals the stored document into dest.
func (j JSONB) Decode(dest any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, dest)
}
