// Package audit records repository activity as structured events. The
// sink is fire and forget: a failure to record never fails the operation
// being audited.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"metarepo/internal/logging"
)

// Severity classifies an audit event.
type Severity string

// Severities.
const (
	SeverityInfo      Severity = "info"
	SeverityAction    Severity = "action"
	SeverityError     Severity = "error"
	SeverityException Severity = "exception"
)

// Event is one auditable repository occurrence.
type Event struct {
	Severity  Severity
	Operation string
	UserID    string
	GUID      string
	TypeName  string
	MessageID string
	Detail    string
	Time      time.Time
}

// Sink receives audit events.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NoopSink discards every event.
type NoopSink struct{}

// Record does nothing.
func (NoopSink) Record(context.Context, Event) {}

// ZerologSink writes audit events through the shared logging setup under
// the audit component.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink builds a sink over the audit component logger.
func NewZerologSink() *ZerologSink {
	return &ZerologSink{logger: logging.GetLogger("audit")}
}

// Record emits the event as one structured log line.
func (s *ZerologSink) Record(_ context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	entry := s.logger.Info()
	if event.Severity == SeverityError || event.Severity == SeverityException {
		entry = s.logger.Error()
	}
	entry.
		Str("severity", string(event.Severity)).
		Str("operation", event.Operation).
		Str("user_id", event.UserID)
	if event.GUID != "" {
		entry.Str("guid", event.GUID)
	}
	if event.TypeName != "" {
		entry.Str("type_name", event.TypeName)
	}
	if event.MessageID != "" {
		entry.Str("message_id", event.MessageID)
	}
	entry.Time("event_time", event.Time).Msg(event.Detail)
}

// MemorySink retains events in order, for tests and diagnostics.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Record appends the event.
func (s *MemorySink) Record(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
