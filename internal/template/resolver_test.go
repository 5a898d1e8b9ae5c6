package template

import "testing"

func TestResolveOutputsSubstitutesVariables(t *testing.T) {
	outputs := map[string]interface{}{
		"address": "{{ host }}:{{ port }}",
	}
	ctx := map[string]interface{}{"host": "10.0.0.1", "port": "8080"}

	resolved, err := ResolveOutputs(outputs, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["address"] != "10.0.0.1:8080" {
		t.Fatalf("unexpected address: %v", resolved["address"])
	}
}

func TestResolveOutputsRecursesIntoNestedValues(t *testing.T) {
	outputs := map[string]interface{}{
		"endpoint": map[string]interface{}{
			"host": "{{ host }}",
			"tags": []interface{}{"{{ env }}", "static"},
		},
	}
	ctx := map[string]interface{}{"host": "10.0.0.1", "env": "prod"}

	resolved, err := ResolveOutputs(outputs, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	endpoint, ok := resolved["endpoint"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested map, got %+v", resolved["endpoint"])
	}
	if endpoint["host"] != "10.0.0.1" {
		t.Fatalf("unexpected host: %v", endpoint["host"])
	}
	tags, ok := endpoint["tags"].([]interface{})
	if !ok || tags[0] != "prod" || tags[1] != "static" {
		t.Fatalf("unexpected tags: %+v", endpoint["tags"])
	}
}

func TestResolveOutputsMissingVariableIsError(t *testing.T) {
	outputs := map[string]interface{}{"address": "{{ host }}"}

	if _, err := ResolveOutputs(outputs, map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for missing variable")
	}
}

func TestResolveOutputsSprigPipeline(t *testing.T) {
	outputs := map[string]interface{}{"name": "{{ name | upper }}"}
	ctx := map[string]interface{}{"name": "prod-cluster"}

	resolved, err := ResolveOutputs(outputs, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["name"] != "PROD-CLUSTER" {
		t.Fatalf("unexpected name: %v", resolved["name"])
	}
}

func TestMergeContextsLaterOverridesEarlier(t *testing.T) {
	merged := MergeContexts(
		map[string]interface{}{"a": "1", "b": "1"},
		map[string]interface{}{"b": "2"},
	)
	if merged["a"] != "1" || merged["b"] != "2" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
}
