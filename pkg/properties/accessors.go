package properties

import "time"

// Typed accessors. Every getter returns the type-appropriate zero value
// when the named property is absent, and a *MismatchError when the stored
// category or primitive kind differs from the requested one. The source
// and method parameters feed diagnostics only.

func getPrimitive(source string, props *InstanceProperties, name, method string, kind PrimitiveKind) (any, error) {
	v, ok := props.Get(name)
	if !ok {
		return nil, nil
	}
	pv, ok := v.(PrimitiveValue)
	if !ok || pv.Kind != kind {
		return nil, mismatch(source, method, name, string(CategoryPrimitive)+"/"+string(kind), v)
	}
	return pv.Value, nil
}

// GetStringProperty returns the named string property or "".
func GetStringProperty(source string, props *InstanceProperties, name, method string) (string, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveString)
	if err != nil || raw == nil {
		return "", err
	}
	return raw.(string), nil
}

// GetIntProperty returns the named int property or 0.
func GetIntProperty(source string, props *InstanceProperties, name, method string) (int, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveInt)
	if err != nil || raw == nil {
		return 0, err
	}
	return raw.(int), nil
}

// GetLongProperty returns the named long property or 0.
func GetLongProperty(source string, props *InstanceProperties, name, method string) (int64, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveLong)
	if err != nil || raw == nil {
		return 0, err
	}
	return raw.(int64), nil
}

// GetBooleanProperty returns the named boolean property or false.
func GetBooleanProperty(source string, props *InstanceProperties, name, method string) (bool, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveBoolean)
	if err != nil || raw == nil {
		return false, err
	}
	return raw.(bool), nil
}

// GetDoubleProperty returns the named double property or 0.
func GetDoubleProperty(source string, props *InstanceProperties, name, method string) (float64, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveDouble)
	if err != nil || raw == nil {
		return 0, err
	}
	return raw.(float64), nil
}

// GetDateProperty returns the named date property or the zero time. Dates
// are stored as integer epoch milliseconds and surfaced in UTC.
func GetDateProperty(source string, props *InstanceProperties, name, method string) (time.Time, error) {
	raw, err := getPrimitive(source, props, name, method, PrimitiveDate)
	if err != nil || raw == nil {
		return time.Time{}, err
	}
	return time.UnixMilli(raw.(int64)).UTC(), nil
}

// GetEnumOrdinal returns the ordinal of the named enum property or -1 when
// absent, so a genuine ordinal zero is distinguishable from "not set".
func GetEnumOrdinal(source string, props *InstanceProperties, name, method string) (int, error) {
	v, ok := props.Get(name)
	if !ok {
		return -1, nil
	}
	ev, ok := v.(EnumValue)
	if !ok {
		return -1, mismatch(source, method, name, string(CategoryEnum), v)
	}
	return ev.Ordinal, nil
}

// GetStringArrayProperty returns the named array property's values or nil.
func GetStringArrayProperty(source string, props *InstanceProperties, name, method string) ([]string, error) {
	v, ok := props.Get(name)
	if !ok {
		return nil, nil
	}
	av, ok := v.(ArrayValue)
	if !ok {
		return nil, mismatch(source, method, name, string(CategoryArray), v)
	}
	out := make([]string, 0, av.Count)
	for i := 0; i < av.Count; i++ {
		s, err := GetStringProperty(source, av.Values, ordinalName(i), method)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func getMapValue(source string, props *InstanceProperties, name, method string) (*InstanceProperties, error) {
	v, ok := props.Get(name)
	if !ok {
		return nil, nil
	}
	mv, ok := v.(MapValue)
	if !ok {
		return nil, mismatch(source, method, name, string(CategoryMap), v)
	}
	return mv.Values, nil
}

// GetStringMapFromProperty unpacks the named map property into a host map
// of strings.
func GetStringMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]string, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]string, nested.Len())
	for _, key := range nested.Names() {
		s, err := GetStringProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = s
	}
	return out, nil
}

// GetBooleanMapFromProperty unpacks the named map property into booleans.
func GetBooleanMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]bool, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]bool, nested.Len())
	for _, key := range nested.Names() {
		b, err := GetBooleanProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = b
	}
	return out, nil
}

// GetLongMapFromProperty unpacks the named map property into int64s.
func GetLongMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]int64, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]int64, nested.Len())
	for _, key := range nested.Names() {
		l, err := GetLongProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = l
	}
	return out, nil
}

// GetIntMapFromProperty unpacks the named map property into ints.
func GetIntMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]int, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]int, nested.Len())
	for _, key := range nested.Names() {
		i, err := GetIntProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = i
	}
	return out, nil
}

// GetDoubleMapFromProperty unpacks the named map property into float64s.
func GetDoubleMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]float64, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]float64, nested.Len())
	for _, key := range nested.Names() {
		d, err := GetDoubleProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = d
	}
	return out, nil
}

// GetDateMapFromProperty unpacks the named map property into times.
func GetDateMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]time.Time, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	out := make(map[string]time.Time, nested.Len())
	for _, key := range nested.Names() {
		t, err := GetDateProperty(source, nested, key, method)
		if err != nil {
			return nil, err
		}
		out[key] = t
	}
	return out, nil
}

// GetMapFromProperty unpacks the named map property into a heterogeneous
// host map.
func GetMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]any, error) {
	nested, err := getMapValue(source, props, name, method)
	if err != nil || nested == nil {
		return nil, err
	}
	return nested.AsMap(), nil
}
