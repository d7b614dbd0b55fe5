package properties

import "time"

// Removal helpers. Each is get-then-delete and idempotent: removing an
// absent property returns the zero value with no error.

// RemoveStringProperty returns and deletes the named string property.
func RemoveStringProperty(source string, props *InstanceProperties, name, method string) (string, error) {
	v, err := GetStringProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveIntProperty returns and deletes the named int property.
func RemoveIntProperty(source string, props *InstanceProperties, name, method string) (int, error) {
	v, err := GetIntProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveLongProperty returns and deletes the named long property.
func RemoveLongProperty(source string, props *InstanceProperties, name, method string) (int64, error) {
	v, err := GetLongProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveBooleanProperty returns and deletes the named boolean property.
func RemoveBooleanProperty(source string, props *InstanceProperties, name, method string) (bool, error) {
	v, err := GetBooleanProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveDoubleProperty returns and deletes the named double property.
func RemoveDoubleProperty(source string, props *InstanceProperties, name, method string) (float64, error) {
	v, err := GetDoubleProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveDateProperty returns and deletes the named date property.
func RemoveDateProperty(source string, props *InstanceProperties, name, method string) (time.Time, error) {
	v, err := GetDateProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveEnumOrdinal returns and deletes the named enum property's ordinal.
func RemoveEnumOrdinal(source string, props *InstanceProperties, name, method string) (int, error) {
	v, err := GetEnumOrdinal(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveStringArrayProperty returns and deletes the named array property.
func RemoveStringArrayProperty(source string, props *InstanceProperties, name, method string) ([]string, error) {
	v, err := GetStringArrayProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveStringMapFromProperty returns and deletes the named string map.
func RemoveStringMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]string, error) {
	v, err := GetStringMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveBooleanMapFromProperty returns and deletes the named boolean map.
func RemoveBooleanMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]bool, error) {
	v, err := GetBooleanMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveLongMapFromProperty returns and deletes the named long map.
func RemoveLongMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]int64, error) {
	v, err := GetLongMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveIntMapFromProperty returns and deletes the named int map.
func RemoveIntMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]int, error) {
	v, err := GetIntMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveDoubleMapFromProperty returns and deletes the named double map.
func RemoveDoubleMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]float64, error) {
	v, err := GetDoubleMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveDateMapFromProperty returns and deletes the named date map.
func RemoveDateMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]time.Time, error) {
	v, err := GetDateMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}

// RemoveMapFromProperty returns and deletes the named heterogeneous map.
func RemoveMapFromProperty(source string, props *InstanceProperties, name, method string) (map[string]any, error) {
	v, err := GetMapFromProperty(source, props, name, method)
	if err == nil {
		props.Remove(name)
	}
	return v, err
}
