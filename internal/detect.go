package internal

// DetectSource classifies a decoded JSON value. Only the first element of a
// top-level array is inspected; anything else is SourceUnknown.
func DetectSource(value any) Source {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return SourceUnknown
	}

	first, ok := items[0].(map[string]any)
	if !ok {
		return SourceUnknown
	}

	if truthy(first["mapping"]) && truthy(first["current_node"]) {
		return SourceChatGPT
	}
	if truthy(first["chat_messages"]) && truthy(first["uuid"]) {
		return SourceClaude
	}
	return SourceUnknown
}

// truthy reports whether a decoded JSON value counts as present: absent,
// null, false, zero and the empty string do not.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	default:
		// objects and arrays, including empty ones
		return true
	}
}
