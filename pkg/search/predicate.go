// Package search normalises a property bag plus match criteria into a
// predicate tree that metadata collections evaluate against stored
// instances.
package search

import (
	"strings"

	"metarepo/pkg/properties"
)

// MatchCriteria controls how a predicate's conditions compose.
type MatchCriteria string

// Supported match criteria.
const (
	// MatchAll requires every condition to hold.
	MatchAll MatchCriteria = "all"
	// MatchAny requires at least one condition to hold.
	MatchAny MatchCriteria = "any"
	// MatchNone requires the conjunction of conditions to fail.
	MatchNone MatchCriteria = "none"
)

// Operator selects how a condition compares the stored value.
type Operator string

// Condition operators. String primitives match by substring, everything
// else by equality.
const (
	OperatorEquals Operator = "eq"
	OperatorLike   Operator = "like"
)

// Condition compares one named property against a value.
type Condition struct {
	Property string
	Operator Operator
	Value    properties.Value
}

// Predicate is a normalised search expression. The zero value matches
// everything.
type Predicate struct {
	Criteria   MatchCriteria
	Conditions []Condition
}

// IsEmpty reports whether the predicate has no conditions.
func (p Predicate) IsEmpty() bool { return len(p.Conditions) == 0 }

// Build converts a property bag into a predicate under the supplied match
// criteria, emitting one condition per property. String primitives get the
// like operator, all other values equality. A nil bag produces an empty
// predicate that matches everything.
func Build(props *properties.InstanceProperties, criteria MatchCriteria) Predicate {
	pred := Predicate{Criteria: criteria}
	if props == nil {
		return pred
	}
	for _, name := range props.Names() {
		value, _ := props.Get(name)
		op := OperatorEquals
		if pv, ok := value.(properties.PrimitiveValue); ok && pv.Kind == properties.PrimitiveString {
			op = OperatorLike
		}
		pred.Conditions = append(pred.Conditions, Condition{Property: name, Operator: op, Value: value})
	}
	return pred
}

// Matches evaluates the predicate against an instance's property bag.
func (p Predicate) Matches(props *properties.InstanceProperties) bool {
	if p.IsEmpty() {
		return true
	}
	switch p.Criteria {
	case MatchAny:
		for _, c := range p.Conditions {
			if c.matches(props) {
				return true
			}
		}
		return false
	case MatchNone:
		return !p.allMatch(props)
	default:
		return p.allMatch(props)
	}
}

func (p Predicate) allMatch(props *properties.InstanceProperties) bool {
	for _, c := range p.Conditions {
		if !c.matches(props) {
			return false
		}
	}
	return true
}

func (c Condition) matches(props *properties.InstanceProperties) bool {
	stored, ok := props.Get(c.Property)
	if !ok {
		return false
	}
	if c.Operator == OperatorLike {
		want, wok := stringOf(c.Value)
		got, gok := stringOf(stored)
		if wok && gok {
			return strings.Contains(got, want)
		}
	}
	return properties.Equal(stored, c.Value)
}

// MatchesValue reports whether any string primitive in the bag contains the
// supplied search string. This backs the value-search operations.
func MatchesValue(props *properties.InstanceProperties, searchValue string) bool {
	if props == nil {
		return false
	}
	for _, name := range props.Names() {
		stored, _ := props.Get(name)
		if s, ok := stringOf(stored); ok && strings.Contains(s, searchValue) {
			return true
		}
	}
	return false
}

func stringOf(v properties.Value) (string, bool) {
	pv, ok := v.(properties.PrimitiveValue)
	if !ok || pv.Kind != properties.PrimitiveString {
		return "", false
	}
	s, ok := pv.Value.(string)
	return s, ok
}
