package ferr

import (
	"errors"
	"fmt"
)

// Fault is the structured error raised by metadata collections and the
// facade. It carries a stable message id and interpolated parameters so
// clients can branch on Kind/MessageID without string-matching prose.
type Fault struct {
	Kind         Kind
	MessageID    string
	Message      string
	Params       []string
	SystemAction string
	UserAction   string
	CausedBy     error
	// Properties carries optional diagnostic key/values attached by the
	// raising component.
	Properties map[string]any
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s %s", f.MessageID, f.Message)
}

// Unwrap exposes the underlying cause, if any.
func (f *Fault) Unwrap() error { return f.CausedBy }

// Is matches faults by kind so errors.Is(err, &Fault{Kind: k}) works for
// sentinel comparisons in tests.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == f.Kind
}

// WithCause returns a copy of the fault carrying the supplied cause.
func (f *Fault) WithCause(cause error) *Fault {
	cp := *f
	cp.CausedBy = cause
	return &cp
}

// WithProperty returns a copy of the fault with a diagnostic property set.
func (f *Fault) WithProperty(key string, value any) *Fault {
	cp := *f
	cp.Properties = make(map[string]any, len(f.Properties)+1)
	for k, v := range f.Properties {
		cp.Properties[k] = v
	}
	cp.Properties[key] = value
	return &cp
}

// New builds a fault from a message definition, interpolating params into
// the message template in order.
func New(def MessageDefinition, params ...string) *Fault {
	return &Fault{
		Kind:         def.Kind,
		MessageID:    def.ID,
		Message:      interpolate(def.Template, params),
		Params:       params,
		SystemAction: def.SystemAction,
		UserAction:   def.UserAction,
	}
}

// KindOf extracts the fault kind from an error chain. The second return is
// false when the chain contains no Fault.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// AsFault extracts the Fault from an error chain, or nil.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}

func interpolate(template string, params []string) string {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return fmt.Sprintf(template, args...)
}
