package properties

import (
	"bytes"
	"encoding/json"
)

// InstanceProperties is an ordered mapping from property name to value.
// No two entries share a name; insertion order is preserved for stable
// iteration and serialisation. The zero value and nil pointer are both
// usable as an empty bag for reads; adders allocate lazily.
type InstanceProperties struct {
	order  []string
	values map[string]Value
}

// New returns an empty property bag.
func New() *InstanceProperties {
	return &InstanceProperties{values: make(map[string]Value)}
}

// Len reports the number of properties in the bag.
func (p *InstanceProperties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Names returns property names in insertion order.
func (p *InstanceProperties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Get returns the named value and whether it is present.
func (p *InstanceProperties) Get(name string) (Value, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

// Set stores a value under name, replacing any previous entry. The receiver
// must be non-nil; package-level adders handle lazy allocation.
func (p *InstanceProperties) Set(name string, v Value) {
	if _, exists := p.values[name]; !exists {
		p.order = append(p.order, name)
	}
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	p.values[name] = v
}

// Remove deletes the named property. Removing an absent name is a no-op.
func (p *InstanceProperties) Remove(name string) {
	if p == nil {
		return
	}
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Clone deep-copies the bag. A nil bag clones to nil.
func (p *InstanceProperties) Clone() *InstanceProperties {
	if p == nil {
		return nil
	}
	cp := New()
	for _, name := range p.order {
		cp.Set(name, p.values[name].CloneValue())
	}
	return cp
}

// Equal reports deep equality of two bags, ignoring insertion order.
func (p *InstanceProperties) Equal(other *InstanceProperties) bool {
	if p.Len() != other.Len() {
		return false
	}
	if p == nil {
		return true
	}
	for name, v := range p.values {
		ov, ok := other.Get(name)
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// AsMap converts the bag into a plain host map. A nil bag yields nil.
func (p *InstanceProperties) AsMap() map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p.order))
	for _, name := range p.order {
		out[name] = p.values[name].HostValue()
	}
	return out
}

type propertyEntry struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the bag as an ordered array of name/value entries so
// insertion order survives persistence round trips.
func (p *InstanceProperties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	entries := make([]propertyEntry, 0, len(p.order))
	for _, name := range p.order {
		raw, err := MarshalValue(p.values[name])
		if err != nil {
			return nil, err
		}
		entries = append(entries, propertyEntry{Name: name, Value: raw})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the ordered entry array written by MarshalJSON.
func (p *InstanceProperties) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var entries []propertyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	p.order = nil
	p.values = make(map[string]Value, len(entries))
	for _, e := range entries {
		v, err := UnmarshalValue(e.Value)
		if err != nil {
			return err
		}
		p.Set(e.Name, v)
	}
	return nil
}
