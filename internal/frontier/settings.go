package frontier

// Settings is the opaque configuration bundle handed to a Frontier at
// construction. Its schema belongs to the frontier implementation, not
// the scheduler; the host passes it through from config unmodified.
type Settings map[string]any

// Int reads an integer setting, tolerating the numeric types config
// decoders produce, and falls back to def when absent or mistyped.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Bool reads a boolean setting, falling back to def when absent or
// mistyped.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}
