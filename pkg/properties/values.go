// Package properties implements the typed property bag carried by every
// metadata instance: an ordered mapping from property name to a tagged
// variant value, with typed accessor, removal, and adder helpers plus
// conversions to and from plain host maps.
package properties

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies the variant of a property value.
type Category string

// Property value categories.
const (
	CategoryPrimitive Category = "primitive"
	CategoryEnum      Category = "enum"
	CategoryStruct    Category = "struct"
	CategoryArray     Category = "array"
	CategoryMap       Category = "map"
)

// PrimitiveKind identifies the concrete type held by a primitive value.
type PrimitiveKind string

// Primitive kinds. Dates are stored internally as integer epoch
// milliseconds; big decimal and big integer values as their canonical
// string form.
const (
	PrimitiveUnknown    PrimitiveKind = "unknown"
	PrimitiveString     PrimitiveKind = "string"
	PrimitiveInt        PrimitiveKind = "int"
	PrimitiveLong       PrimitiveKind = "long"
	PrimitiveShort      PrimitiveKind = "short"
	PrimitiveBoolean    PrimitiveKind = "boolean"
	PrimitiveFloat      PrimitiveKind = "float"
	PrimitiveDouble     PrimitiveKind = "double"
	PrimitiveDate       PrimitiveKind = "date"
	PrimitiveChar       PrimitiveKind = "char"
	PrimitiveByte       PrimitiveKind = "byte"
	PrimitiveBigDecimal PrimitiveKind = "bigdecimal"
	PrimitiveBigInteger PrimitiveKind = "biginteger"
)

// Value is the closed variant interface over property values. The concrete
// types are PrimitiveValue, EnumValue, ArrayValue, MapValue and StructValue;
// consumers switch exhaustively on those.
type Value interface {
	Category() Category
	// CloneValue returns a deep copy so bags can be shared safely.
	CloneValue() Value
	// HostValue converts the value into a plain host representation
	// (primitives, maps and slices) for callers outside the property model.
	HostValue() any
}

// PrimitiveValue holds a single primitive of the declared kind.
type PrimitiveValue struct {
	Kind  PrimitiveKind
	Value any
}

// Category identifies the primitive variant.
func (v PrimitiveValue) Category() Category { return CategoryPrimitive }

// CloneValue returns a copy. Primitive payloads are immutable host scalars.
func (v PrimitiveValue) CloneValue() Value { return v }

// HostValue returns the primitive payload; dates surface as time.Time.
func (v PrimitiveValue) HostValue() any {
	if v.Kind == PrimitiveDate {
		if ms, ok := v.Value.(int64); ok {
			return time.UnixMilli(ms).UTC()
		}
	}
	return v.Value
}

// EnumValue holds one symbol of an enumeration.
type EnumValue struct {
	Ordinal     int
	Symbol      string
	Description string
}

// Category identifies the enum variant.
func (v EnumValue) Category() Category { return CategoryEnum }

// CloneValue returns a copy.
func (v EnumValue) CloneValue() Value { return v }

// HostValue returns the symbolic name.
func (v EnumValue) HostValue() any { return v.Symbol }

// ArrayValue holds ordered values keyed by their zero-based ordinal encoded
// as a string property name.
type ArrayValue struct {
	Count  int
	Values *InstanceProperties
}

// Category identifies the array variant.
func (v ArrayValue) Category() Category { return CategoryArray }

// CloneValue deep-copies the embedded bag.
func (v ArrayValue) CloneValue() Value {
	return ArrayValue{Count: v.Count, Values: v.Values.Clone()}
}

// HostValue returns an ordered slice of host values.
func (v ArrayValue) HostValue() any {
	out := make([]any, 0, v.Count)
	for i := 0; i < v.Count; i++ {
		val, ok := v.Values.Get(fmt.Sprintf("%d", i))
		if !ok {
			out = append(out, nil)
			continue
		}
		out = append(out, val.HostValue())
	}
	return out
}

// MapValue holds a nested property bag keyed by map entry name.
type MapValue struct {
	Values *InstanceProperties
}

// Category identifies the map variant.
func (v MapValue) Category() Category { return CategoryMap }

// CloneValue deep-copies the embedded bag.
func (v MapValue) CloneValue() Value { return MapValue{Values: v.Values.Clone()} }

// HostValue returns a plain map of host values.
func (v MapValue) HostValue() any {
	out := make(map[string]any, v.Values.Len())
	for _, name := range v.Values.Names() {
		val, _ := v.Values.Get(name)
		out[name] = val.HostValue()
	}
	return out
}

// StructValue holds a nested bag together with the struct type it conforms to.
type StructValue struct {
	TypeName string
	Values   *InstanceProperties
}

// Category identifies the struct variant.
func (v StructValue) Category() Category { return CategoryStruct }

// CloneValue deep-copies the embedded bag.
func (v StructValue) CloneValue() Value {
	return StructValue{TypeName: v.TypeName, Values: v.Values.Clone()}
}

// HostValue returns a plain map of host values.
func (v StructValue) HostValue() any {
	return MapValue{Values: v.Values}.HostValue()
}

// Equal reports deep equality of two property values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Category() != b.Category() {
		return false
	}
	switch av := a.(type) {
	case PrimitiveValue:
		bv := b.(PrimitiveValue)
		return av.Kind == bv.Kind && av.Value == bv.Value
	case EnumValue:
		return av == b.(EnumValue)
	case ArrayValue:
		bv := b.(ArrayValue)
		return av.Count == bv.Count && av.Values.Equal(bv.Values)
	case MapValue:
		return av.Values.Equal(b.(MapValue).Values)
	case StructValue:
		bv := b.(StructValue)
		return av.TypeName == bv.TypeName && av.Values.Equal(bv.Values)
	default:
		return false
	}
}

type valueEnvelope struct {
	Category    Category           `json:"category"`
	Kind        PrimitiveKind      `json:"kind,omitempty"`
	Value       any                `json:"value,omitempty"`
	Ordinal     int                `json:"ordinal,omitempty"`
	Symbol      string             `json:"symbol,omitempty"`
	Description string             `json:"description,omitempty"`
	Count       int                `json:"count,omitempty"`
	TypeName    string             `json:"type_name,omitempty"`
	Values      *InstanceProperties `json:"values,omitempty"`
}

// MarshalValue encodes a property value with its category discriminator.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case PrimitiveValue:
		return json.Marshal(valueEnvelope{Category: CategoryPrimitive, Kind: val.Kind, Value: val.Value})
	case EnumValue:
		return json.Marshal(valueEnvelope{Category: CategoryEnum, Ordinal: val.Ordinal, Symbol: val.Symbol, Description: val.Description})
	case ArrayValue:
		return json.Marshal(valueEnvelope{Category: CategoryArray, Count: val.Count, Values: val.Values})
	case MapValue:
		return json.Marshal(valueEnvelope{Category: CategoryMap, Values: val.Values})
	case StructValue:
		return json.Marshal(valueEnvelope{Category: CategoryStruct, TypeName: val.TypeName, Values: val.Values})
	default:
		return nil, fmt.Errorf("unknown property value category %T", v)
	}
}

// UnmarshalValue decodes a property value previously written by MarshalValue.
func UnmarshalValue(data []byte) (Value, error) {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Category {
	case CategoryPrimitive:
		return PrimitiveValue{Kind: env.Kind, Value: normalizePrimitive(env.Kind, env.Value)}, nil
	case CategoryEnum:
		return EnumValue{Ordinal: env.Ordinal, Symbol: env.Symbol, Description: env.Description}, nil
	case CategoryArray:
		return ArrayValue{Count: env.Count, Values: env.Values}, nil
	case CategoryMap:
		return MapValue{Values: env.Values}, nil
	case CategoryStruct:
		return StructValue{TypeName: env.TypeName, Values: env.Values}, nil
	default:
		return nil, fmt.Errorf("unknown property value category %q", env.Category)
	}
}

// normalizePrimitive coerces JSON-decoded numbers back to the host type
// implied by the primitive kind.
func normalizePrimitive(kind PrimitiveKind, raw any) any {
	switch kind {
	case PrimitiveInt, PrimitiveShort:
		if f, ok := raw.(float64); ok {
			return int(f)
		}
	case PrimitiveLong, PrimitiveDate:
		if f, ok := raw.(float64); ok {
			return int64(f)
		}
	case PrimitiveFloat:
		if f, ok := raw.(float64); ok {
			return float32(f)
		}
	case PrimitiveByte:
		if f, ok := raw.(float64); ok {
			return byte(f)
		}
	}
	return raw
}
