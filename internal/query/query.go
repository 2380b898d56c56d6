// Package query answers dotted-path lookups against a loaded
// configuration, backed by gjson over the JSON rendering of the tree.
// Paths follow gjson syntax: "task.host", "servers.0.name",
// "tasks.#.id".
package query

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Extract returns the value at a gjson path in a JSON document,
// rendered as text. Mapping and list results come back as their raw
// JSON; scalars come back bare.
func Extract(jsonDoc, path string) (string, error) {
	if jsonDoc == "" {
		return "", fmt.Errorf("empty json document")
	}
	if path == "" {
		return "", fmt.Errorf("empty query path")
	}

	result := gjson.Get(jsonDoc, path)
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll resolves several named paths against one document,
// collecting per-path failures into a single error.
func ExtractAll(jsonDoc string, paths map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	var failed []string
	for name, path := range paths {
		v, err := Extract(jsonDoc, path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		out[name] = v
	}
	if len(failed) > 0 {
		return out, fmt.Errorf("query errors: %v", failed)
	}
	return out, nil
}
