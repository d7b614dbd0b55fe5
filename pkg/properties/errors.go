package properties

import "fmt"

// MismatchError reports an accessor invoked against a property whose stored
// category or primitive kind differs from the one requested. This signals
// an ordering bug in the calling code, not bad user input, and is therefore
// a distinct type from the repository fault taxonomy.
type MismatchError struct {
	Source   string
	Method   string
	Property string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: property %q requested as %s by %s but stored as %s",
		e.Source, e.Property, e.Expected, e.Method, e.Actual)
}

// UnsupportedValueError reports a host value whose type the type-sniffing
// adder cannot map onto a property category.
type UnsupportedValueError struct {
	Source   string
	Method   string
	Property string
	HostType string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("%s: property %q passed to %s has unsupported host type %s",
		e.Source, e.Property, e.Method, e.HostType)
}

func mismatch(source, method, property, expected string, actual Value) error {
	desc := "absent"
	if actual != nil {
		desc = string(actual.Category())
		if pv, ok := actual.(PrimitiveValue); ok {
			desc = fmt.Sprintf("%s/%s", desc, pv.Kind)
		}
	}
	return &MismatchError{Source: source, Method: method, Property: property, Expected: expected, Actual: desc}
}
