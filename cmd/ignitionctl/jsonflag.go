package main

import (
	"encoding/json"
	"fmt"
)

// parseJSONObject parses a JSON object flag value, treating an empty
// string as an empty object rather than an error.
func parseJSONObject(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("parse JSON object: %w", err)
	}
	return obj, nil
}
