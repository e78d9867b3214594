package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("JSONMap: Scan failed, expected []byte or string but got %T", value)
	}

	return json.Unmarshal(b, j)
}

// GetString returns the string stored under key, or "" when absent or not a string.
func (j JSONMap) GetString(key string) string {
	if j == nil {
		return ""
	}
	s, _ := j[key].(string)
	return s
}
