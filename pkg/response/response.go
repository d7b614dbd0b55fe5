// Package response defines the uniform success-or-typed-failure envelope
// every facade operation returns. Failures are identified by an enumerated
// error kind and a stable message id; the concrete Go error type appears
// only in a free-text diagnostic field.
package response

import (
	"fmt"

	"metarepo/pkg/ferr"
)

// Envelope carries the outcome common to every operation response.
type Envelope struct {
	RelatedStatusCode int       `json:"related_status_code"`
	ErrorKind         ferr.Kind `json:"error_kind,omitempty"`
	MessageID         string    `json:"message_id,omitempty"`
	Message           string    `json:"message,omitempty"`
	MessageParams     []string  `json:"message_params,omitempty"`
	SystemAction      string    `json:"system_action,omitempty"`
	UserAction        string    `json:"user_action,omitempty"`
	// DiagnosticClass names the Go error type behind the fault, for
	// diagnostics only; clients branch on ErrorKind.
	DiagnosticClass string         `json:"diagnostic_class,omitempty"`
	CausedBy        string         `json:"caused_by,omitempty"`
	FaultProperties map[string]any `json:"fault_properties,omitempty"`
}

// Failed reports whether the envelope describes a failure.
func (e Envelope) Failed() bool { return e.ErrorKind != "" }

// Response wraps a single result payload.
type Response[T any] struct {
	Envelope
	Result T `json:"result,omitempty"`
}

// PagedResponse wraps a page of results together with the pagination
// protocol fields. NextPageURL is set only when the page is exactly full;
// its absence means end-of-results as far as this page can tell.
type PagedResponse[T any] struct {
	Envelope
	Results     []T    `json:"results,omitempty"`
	Offset      int    `json:"offset"`
	PageSize    int    `json:"page_size"`
	NextPageURL string `json:"next_page_url,omitempty"`
}

// OK builds a success response around a result payload.
func OK[T any](result T) Response[T] {
	return Response[T]{Envelope: Envelope{RelatedStatusCode: 200}, Result: result}
}

// OKVoid builds a success response with no payload.
func OKVoid() Response[struct{}] {
	return Response[struct{}]{Envelope: Envelope{RelatedStatusCode: 200}}
}

// Fail builds a failure response from an error. Faults map field for
// field; any other error is wrapped as a repository error so the envelope
// is never empty.
func Fail[T any](err error) Response[T] {
	return Response[T]{Envelope: FromError(err)}
}

// FailPaged builds a failed paged response.
func FailPaged[T any](err error) PagedResponse[T] {
	return PagedResponse[T]{Envelope: FromError(err)}
}

// Page builds a successful paged response.
func Page[T any](results []T, offset, pageSize int, nextPageURL string) PagedResponse[T] {
	return PagedResponse[T]{
		Envelope:    Envelope{RelatedStatusCode: 200},
		Results:     results,
		Offset:      offset,
		PageSize:    pageSize,
		NextPageURL: nextPageURL,
	}
}

// FromError converts an error into a failure envelope.
func FromError(err error) Envelope {
	f := ferr.AsFault(err)
	if f == nil {
		f = ferr.New(ferr.UnclassifiedError, err.Error()).WithCause(err)
	}
	env := Envelope{
		RelatedStatusCode: f.Kind.StatusCode(),
		ErrorKind:         f.Kind,
		MessageID:         f.MessageID,
		Message:           f.Message,
		MessageParams:     f.Params,
		SystemAction:      f.SystemAction,
		UserAction:        f.UserAction,
		DiagnosticClass:   fmt.Sprintf("%T", f),
		FaultProperties:   f.Properties,
	}
	if f.CausedBy != nil {
		env.CausedBy = fmt.Sprintf("%T: %s", f.CausedBy, f.CausedBy.Error())
	}
	return env
}
