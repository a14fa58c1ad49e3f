package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Fields is a jsonb object column holding user-submitted form data.
type Fields map[string]any

func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(f)
}

func (f *Fields) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("fields: unsupported column type")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out := Fields{}
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	*f = out

	return nil
}

// String returns the field rendered as text, or "" when absent.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

// FieldsFrom converts a tagged form struct into its json object form.
func FieldsFrom(form any) (Fields, error) {
	b, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	var out Fields
	if err := out.Scan(b); err != nil {
		return nil, err
	}

	return out, nil
}
