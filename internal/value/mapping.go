package value

// Mapping is an insertion-ordered map of string keys to values.
// Overwriting an existing key keeps its original position; deleting
// and re-adding moves it to the end, matching ordinary dict behavior.
type Mapping struct {
	keys []string
	vals map[string]*Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{vals: make(map[string]*Value)}
}

// Set stores v under k, appending k to the key order if new.
func (m *Mapping) Set(k string, v *Value) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Get returns the value for k and whether it is present.
func (m *Mapping) Get(k string) (*Value, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Mapping) Has(k string) bool {
	_, ok := m.vals[k]
	return ok
}

// Delete removes k if present.
func (m *Mapping) Delete(k string) {
	if _, ok := m.vals[k]; !ok {
		return
	}
	delete(m.vals, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a
// copy; callers may delete keys while ranging over it.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int { return len(m.keys) }

// Copy returns a deep copy of the mapping.
func (m *Mapping) Copy() *Mapping {
	c := NewMapping()
	for _, k := range m.keys {
		c.Set(k, m.vals[k].Copy())
	}
	return c
}

// Equal reports deep equality including key order.
func (m *Mapping) Equal(o *Mapping) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !m.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}
