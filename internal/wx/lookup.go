package wx

// DefaultText is the fallback published for text fields the provider omits.
const DefaultText = "Not available"

// Lookup walks a decoded JSON document along keys and returns the value at
// the end of the path, or def when any step is missing.
//
// The provider is inconsistent about wrapping objects in lists: the same
// logical field can arrive as {"a": {...}} or {"a": [{...}]}. When a step
// encounters a list, every element is treated as a candidate map and the
// first one containing the next key wins.
func Lookup(doc any, def any, keys ...string) any {
	current := doc

	for _, key := range keys {
		candidates, ok := current.([]any)
		if !ok {
			candidates = []any{current}
		}

		found := false
		for _, cand := range candidates {
			m, ok := cand.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := m[key]; ok {
				current = v
				found = true
				break
			}
		}

		if !found {
			return def
		}
	}

	return current
}

// LookupString is Lookup rendered as a string; non-string scalars are
// formatted, and a missing path yields def unchanged.
func LookupString(doc any, def string, keys ...string) string {
	return Stringify(Lookup(doc, def, keys...))
}

// LookupList returns the list at the end of the path, or nil. A single
// object is promoted to a one-element list, tolerating the provider's
// scalar/list shape drift for repeated sections.
func LookupList(doc any, keys ...string) []any {
	v := Lookup(doc, nil, keys...)
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		return []any{t}
	default:
		return nil
	}
}
