package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// jsonValue and scanJSON back the JSONB columns of the models package.
func jsonValue(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSON column: unsupported type %T", value)
	}

	return json.Unmarshal(data, dest)
}
