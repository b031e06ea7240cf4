package cli

import (
	"fmt"
	"strings"
)

// ParseQueryData turns --execute and --input flags into a navigation
// query_data payload. Inputs are written as "<query-key>:<prompt>=<value>".
func ParseQueryData(execute, inputs []string) (map[string]any, error) {
	if len(execute) == 0 && len(inputs) == 0 {
		return nil, nil
	}
	entries := make(map[string]map[string]any)
	entry := func(key string) map[string]any {
		e, ok := entries[key]
		if !ok {
			e = map[string]any{"execute": false, "inputs": map[string]any{}}
			entries[key] = e
		}
		return e
	}

	for _, key := range execute {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("--execute: empty query key")
		}
		entry(key)["execute"] = true
	}
	for _, raw := range inputs {
		key, rest, ok := strings.Cut(raw, ":")
		if !ok || key == "" {
			return nil, fmt.Errorf("--input %q: expected <query-key>:<prompt>=<value>", raw)
		}
		prompt, value, ok := strings.Cut(rest, "=")
		if !ok || prompt == "" {
			return nil, fmt.Errorf("--input %q: expected <query-key>:<prompt>=<value>", raw)
		}
		entry(key)["inputs"].(map[string]any)[prompt] = value
	}

	out := make(map[string]any, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out, nil
}
