package types

// Config is the opaque key-value construction input of an environment.
// Recognized keys are popped by the consuming constructor and the remainder
// is forwarded verbatim.
type Config map[string]interface{}

// Clone returns a shallow copy. Constructors clone before forwarding so the
// caller's map is never mutated.
func (c Config) Clone() Config {
	clone := make(Config, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// PopInt reads an integer option and returns it together with a clone of the
// config without that key. Missing or non-integer values yield the default.
func (c Config) PopInt(key string, def int) (int, Config) {
	rest := c.Clone()
	v, ok := rest[key]
	if !ok {
		return def, rest
	}
	delete(rest, key)
	switch n := v.(type) {
	case int:
		return n, rest
	case float64:
		return int(n), rest
	}
	return def, rest
}
