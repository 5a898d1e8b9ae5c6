// Package template resolves the output expressions a reference driver
// template declares ("{{ host }}:{{ port }}") against the property,
// system-property, and deployment-location values carried by a single
// infrastructure request.
package template

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// headPattern matches the opening variable reference of a placeholder,
// with or without a leading dot: "{{ host" or "{{ .host". Resolution
// always normalizes to the dotted form before handing the expression to
// text/template, so a bare "{{ host }}" and a sprig pipeline like
// "{{ host | upper }}" both resolve the same way.
var headPattern = regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_.-]*)`)

// MergeContexts flattens properties, system properties, and deployment
// location into the single lookup context ResolveOutputs substitutes
// against. Later arguments win: a deployment location value shadows a
// same-named property.
func MergeContexts(contexts ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, c := range contexts {
		for k, v := range c {
			merged[k] = v
		}
	}
	return merged
}

// ResolveOutputs substitutes every placeholder in a template's output
// map against ctx, recursing into nested maps and slices. A value with
// no "{{" in it is returned unchanged.
func ResolveOutputs(outputs map[string]interface{}, ctx map[string]interface{}) (map[string]interface{}, error) {
	resolved, err := resolveValue(outputs, ctx)
	if err != nil {
		return nil, err
	}
	out, _ := resolved.(map[string]interface{})
	return out, nil
}

func resolveValue(raw interface{}, ctx map[string]interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		return resolveString(v, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			resolved, err := resolveValue(val, ctx)
			if err != nil {
				return nil, fmt.Errorf("output %q: %w", key, err)
			}
			out[key] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			resolved, err := resolveValue(val, ctx)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return raw, nil
	}
}

// resolveString renders a single output expression through a
// sprig-equipped text/template, so a placeholder may be a bare variable
// ("{{ host }}") or a pipeline using sprig helpers
// ("{{ host | default \"0.0.0.0\" }}"). A variable absent from ctx is a
// hard error rather than an empty substitution.
func resolveString(expr string, ctx map[string]interface{}) (string, error) {
	if !strings.Contains(expr, "{{") {
		return expr, nil
	}

	normalized := headPattern.ReplaceAllString(expr, "{{ .$1")

	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("invalid output expression %q: %w", expr, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("resolve output expression %q: %w", expr, err)
	}
	return buf.String(), nil
}
