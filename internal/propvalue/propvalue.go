// Package propvalue implements the property value map used to carry
// template inputs between the API façade, the infrastructure service,
// and the driver.
package propvalue

// Value is a single typed property entry.
type Value struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Map is the typed view of a property value map: name -> {type, value}.
type Map map[string]Value

// NormalizeRaw accepts either the typed shape ({key: {type, value}}) or the
// raw shape ({key: value}) and returns it unchanged as a generic map.
//
// The framework never coerces value types: whatever shape the caller sent
// is forwarded verbatim to the driver. This mirrors the "uses default" test
// in the original service, where a create request supplying raw
// systemProperties reaches the driver untouched.
func NormalizeRaw(raw map[string]interface{}) map[string]interface{} {
	if raw == nil {
		return map[string]interface{}{}
	}
	return raw
}

// AsTypedMap converts a raw map known to hold the typed shape into a Map,
// for a caller that wants a strongly-typed view instead of forwarding
// interface{} blindly; no component in this repository calls it today.
// Entries that are not in the typed shape are skipped rather than
// causing a panic.
func AsTypedMap(raw map[string]interface{}) Map {
	out := make(Map, len(raw))
	for k, v := range raw {
		entry, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := entry["type"].(string)
		val, _ := entry["value"].(string)
		out[k] = Value{Type: typ, Value: val}
	}
	return out
}
