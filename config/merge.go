package config

// mergeTree merges update into base in place. Keys holding mappings on both
// sides are merged recursively; every other collision (scalar, sequence, or
// mapping-vs-scalar) is won wholesale by update, including empty values.
// Keys present on only one side survive. Sequences are never concatenated.
func mergeTree(base map[string]any, update map[string]any) {
	for key, value := range update {
		if into, ok := base[key].(map[string]any); ok {
			if from, ok := value.(map[string]any); ok {
				mergeTree(into, from)
				continue
			}
		}
		base[key] = value
	}
}

// copyTree returns a deep copy of value. Mappings and sequences are copied
// recursively; scalar leaves are shared.
func copyTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = copyTree(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyTree(item)
		}
		return out
	default:
		return value
	}
}
