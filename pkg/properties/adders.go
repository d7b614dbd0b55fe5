package properties

import (
	"fmt"
	"sort"
	"time"
)

// Adder helpers. Every adder lazily allocates the bag when passed nil and
// returns the (possibly new) bag, so callers always reassign:
//
//	props = properties.AddStringProperty(props, "name", "value")
//
// Collection-valued adders treat a nil host collection as a no-op and
// return the input unchanged; scalar adders always write.

func ensure(props *InstanceProperties) *InstanceProperties {
	if props == nil {
		return New()
	}
	return props
}

func ordinalName(i int) string { return fmt.Sprintf("%d", i) }

// AddStringProperty stores a string primitive under name.
func AddStringProperty(props *InstanceProperties, name, value string) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveString, Value: value})
	return props
}

// AddIntProperty stores an int primitive under name.
func AddIntProperty(props *InstanceProperties, name string, value int) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveInt, Value: value})
	return props
}

// AddLongProperty stores a long primitive under name.
func AddLongProperty(props *InstanceProperties, name string, value int64) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveLong, Value: value})
	return props
}

// AddFloatProperty stores a float primitive under name.
func AddFloatProperty(props *InstanceProperties, name string, value float32) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveFloat, Value: value})
	return props
}

// AddDoubleProperty stores a double primitive under name.
func AddDoubleProperty(props *InstanceProperties, name string, value float64) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveDouble, Value: value})
	return props
}

// AddBooleanProperty stores a boolean primitive under name.
func AddBooleanProperty(props *InstanceProperties, name string, value bool) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveBoolean, Value: value})
	return props
}

// AddDateProperty stores a date primitive under name as epoch milliseconds.
func AddDateProperty(props *InstanceProperties, name string, value time.Time) *InstanceProperties {
	props = ensure(props)
	props.Set(name, PrimitiveValue{Kind: PrimitiveDate, Value: value.UnixMilli()})
	return props
}

// AddEnumProperty stores an enum symbol under name.
func AddEnumProperty(props *InstanceProperties, name string, ordinal int, symbol, description string) *InstanceProperties {
	props = ensure(props)
	props.Set(name, EnumValue{Ordinal: ordinal, Symbol: symbol, Description: description})
	return props
}

// AddStringArrayProperty stores an ordered array of strings under name.
// A nil slice is a no-op.
func AddStringArrayProperty(props *InstanceProperties, name string, values []string) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for i, v := range values {
		nested = AddStringProperty(nested, ordinalName(i), v)
	}
	props = ensure(props)
	props.Set(name, ArrayValue{Count: len(values), Values: nested})
	return props
}

// AddStringMapProperty nests a host string map as a single map property
// under name. A nil map is a no-op.
func AddStringMapProperty(props *InstanceProperties, name string, values map[string]string) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddStringProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddBooleanMapProperty nests a host boolean map under name.
func AddBooleanMapProperty(props *InstanceProperties, name string, values map[string]bool) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddBooleanProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddLongMapProperty nests a host long map under name.
func AddLongMapProperty(props *InstanceProperties, name string, values map[string]int64) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddLongProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddIntMapProperty nests a host int map under name.
func AddIntMapProperty(props *InstanceProperties, name string, values map[string]int) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddIntProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddDoubleMapProperty nests a host double map under name.
func AddDoubleMapProperty(props *InstanceProperties, name string, values map[string]float64) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddDoubleProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddDateMapProperty nests a host date map under name.
func AddDateMapProperty(props *InstanceProperties, name string, values map[string]time.Time) *InstanceProperties {
	if values == nil {
		return props
	}
	nested := New()
	for _, key := range sortedKeys(values) {
		nested = AddDateProperty(nested, key, values[key])
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: nested})
	return props
}

// AddMapProperty nests a heterogeneous host map under name, sniffing each
// entry's type. A nil map is a no-op.
func AddMapProperty(source string, props *InstanceProperties, name string, values map[string]any) (*InstanceProperties, error) {
	if values == nil {
		return props, nil
	}
	nested, err := AddPropertyMap(source, nil, values)
	if err != nil {
		return props, err
	}
	props = ensure(props)
	props.Set(name, MapValue{Values: ensure(nested)})
	return props, nil
}

// AddStringPropertyMap spreads each entry of a host string map across
// sibling top-level properties rather than nesting it. A nil map is a no-op.
func AddStringPropertyMap(props *InstanceProperties, values map[string]string) *InstanceProperties {
	for _, key := range sortedKeys(values) {
		props = AddStringProperty(props, key, values[key])
	}
	return props
}

// AddPropertyMap spreads a heterogeneous host map across sibling top-level
// properties, sniffing each entry's type. Unsupported host types fail with
// *UnsupportedValueError.
func AddPropertyMap(source string, props *InstanceProperties, values map[string]any) (*InstanceProperties, error) {
	const method = "AddPropertyMap"
	for _, key := range sortedKeys(values) {
		switch v := values[key].(type) {
		case string:
			props = AddStringProperty(props, key, v)
		case int:
			props = AddIntProperty(props, key, v)
		case int64:
			props = AddLongProperty(props, key, v)
		case float32:
			props = AddFloatProperty(props, key, v)
		case float64:
			props = AddDoubleProperty(props, key, v)
		case bool:
			props = AddBooleanProperty(props, key, v)
		case time.Time:
			props = AddDateProperty(props, key, v)
		case []string:
			props = AddStringArrayProperty(props, key, v)
		case map[string]string:
			props = AddStringMapProperty(props, key, v)
		case map[string]any:
			var err error
			props, err = AddMapProperty(source, props, key, v)
			if err != nil {
				return props, err
			}
		default:
			return props, &UnsupportedValueError{Source: source, Method: method, Property: key, HostType: fmt.Sprintf("%T", v)}
		}
	}
	return props, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
