// Package repo exposes the local repository facade: the full operation
// surface over one metadata collection, with uniform response envelopes,
// caller validation, audit and metrics on every operation.
package repo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"metarepo/internal/audit"
	"metarepo/internal/logging"
	"metarepo/internal/observability"
	"metarepo/pkg/collection"
	"metarepo/pkg/ferr"
	"metarepo/pkg/response"
)

// LocalRepository fronts the local metadata collection. Every method
// validates the caller, delegates to the collection and reports outcome
// to the audit sink and metrics recorder. Errors never escape as Go
// errors; they are folded into the response envelope.
type LocalRepository struct {
	serverName string
	delegate   collection.MetadataCollection
	metrics    observability.MetricsRecorder
	audit      audit.Sink
	logger     zerolog.Logger
	// pageURLBase is the externally visible prefix next-page links are
	// built under. Empty disables link generation.
	pageURLBase string
	membership  MembershipView
	nowFn       func() time.Time
}

// MembershipView is the slice of the cohort membership provider the
// reference-copy operations consult.
type MembershipView interface {
	CollectionKnown(metadataCollectionID string) (cohortName string, known bool)
}

// Option configures a LocalRepository.
type Option func(*LocalRepository)

// WithMetrics installs a metrics recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(r *LocalRepository) {
		if rec != nil {
			r.metrics = rec
		}
	}
}

// WithAuditSink installs an audit sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(r *LocalRepository) {
		if sink != nil {
			r.audit = sink
		}
	}
}

// WithPageURLBase sets the prefix used when building next-page links.
func WithPageURLBase(base string) Option {
	return func(r *LocalRepository) { r.pageURLBase = base }
}

// WithMembershipView installs the cohort membership provider consulted by
// the reference-copy operations.
func WithMembershipView(view MembershipView) Option {
	return func(r *LocalRepository) { r.membership = view }
}

// noteUnknownHome records an informational audit event when a reference
// copy arrives from a collection no joined cohort has registered. The copy
// is still stored; an unknown home is suspicious, not invalid.
func (r *LocalRepository) noteUnknownHome(ctx context.Context, operation, guid, homeCollectionID string) {
	if r.membership == nil || homeCollectionID == "" {
		return
	}
	if _, known := r.membership.CollectionKnown(homeCollectionID); known {
		return
	}
	r.audit.Record(ctx, audit.Event{
		Severity:  audit.SeverityInfo,
		Operation: operation,
		GUID:      guid,
		Detail:    fmt.Sprintf("home collection %s is not registered in any connected cohort", homeCollectionID),
		Time:      r.nowFn(),
	})
}

// NewLocalRepository builds the facade over a metadata collection. The
// delegate may be nil; operations then fail with a no-local-repository
// envelope rather than panicking.
func NewLocalRepository(serverName string, delegate collection.MetadataCollection, opts ...Option) *LocalRepository {
	r := &LocalRepository{
		serverName: serverName,
		delegate:   delegate,
		metrics:    observability.NoopMetricsRecorder{},
		audit:      audit.NoopSink{},
		logger:     logging.GetLogger("repository"),
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ServerName returns the name this repository registered under.
func (r *LocalRepository) ServerName() string { return r.serverName }

// MetadataCollectionID returns the identifier of the local collection.
func (r *LocalRepository) MetadataCollectionID(ctx context.Context, userID string) response.Response[string] {
	return read(r, ctx, "getMetadataCollectionId", userID, func() (string, error) {
		return r.delegate.MetadataCollectionID(), nil
	})
}

// guard rejects calls that cannot reach a collection: an anonymous caller
// or a repository with no local collection configured.
func (r *LocalRepository) guard(operation, userID string) error {
	if userID == "" {
		return ferr.New(ferr.UserNotAuthorized, userID, operation)
	}
	if r.delegate == nil {
		return ferr.New(ferr.NoLocalRepository, operation)
	}
	return nil
}

func (r *LocalRepository) observe(ctx context.Context, operation string, start time.Time, err error) {
	r.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	if err != nil {
		f := ferr.AsFault(err)
		event := audit.Event{
			Severity:  audit.SeverityError,
			Operation: operation,
			Detail:    err.Error(),
			Time:      r.nowFn(),
		}
		if f != nil {
			event.MessageID = f.MessageID
		}
		r.audit.Record(ctx, event)
		r.logger.Debug().Str("operation", operation).Err(err).Msg("operation failed")
	}
}

// read runs a query operation and wraps its outcome.
func read[T any](r *LocalRepository, ctx context.Context, operation, userID string, fn func() (T, error)) response.Response[T] {
	start := time.Now()
	if err := r.guard(operation, userID); err != nil {
		r.observe(ctx, operation, start, err)
		return response.Fail[T](err)
	}
	result, err := fn()
	r.observe(ctx, operation, start, err)
	if err != nil {
		return response.Fail[T](err)
	}
	return response.OK(result)
}

// mutate runs a state-changing operation, auditing the successful outcome
// against the instance or type it touched.
func mutate[T any](r *LocalRepository, ctx context.Context, operation, userID, subjectGUID string, fn func() (T, error)) response.Response[T] {
	start := time.Now()
	if err := r.guard(operation, userID); err != nil {
		r.observe(ctx, operation, start, err)
		return response.Fail[T](err)
	}
	result, err := fn()
	r.observe(ctx, operation, start, err)
	if err != nil {
		return response.Fail[T](err)
	}
	r.audit.Record(ctx, audit.Event{
		Severity:  audit.SeverityAction,
		Operation: operation,
		UserID:    userID,
		GUID:      subjectGUID,
		Time:      r.nowFn(),
	})
	return response.OK(result)
}

// mutateVoid is mutate for operations with no payload.
func (r *LocalRepository) mutateVoid(ctx context.Context, operation, userID, subjectGUID string, fn func() error) response.Response[struct{}] {
	return mutate(r, ctx, operation, userID, subjectGUID, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// paged runs a query returning a page of results, enforcing the paging
// protocol: a negative offset is rejected up front and a next-page link
// is attached only when the page came back exactly full.
func paged[T any](r *LocalRepository, ctx context.Context, operation, userID string, page collection.PageRequest, fn func() ([]T, error)) response.PagedResponse[T] {
	start := time.Now()
	if err := r.guard(operation, userID); err != nil {
		r.observe(ctx, operation, start, err)
		return response.FailPaged[T](err)
	}
	if page.Offset < 0 || page.PageSize < 0 {
		err := ferr.New(ferr.NegativeOffset, fmt.Sprintf("%d", page.Offset), fmt.Sprintf("%d", page.PageSize), operation)
		r.observe(ctx, operation, start, err)
		return response.FailPaged[T](err)
	}
	results, err := fn()
	r.observe(ctx, operation, start, err)
	if err != nil {
		return response.FailPaged[T](err)
	}
	next := ""
	if page.PageSize > 0 && len(results) == page.PageSize {
		next = r.nextPageURL(operation, page.Offset+page.PageSize, page.PageSize)
	}
	return response.Page(results, page.Offset, page.PageSize, next)
}

func (r *LocalRepository) nextPageURL(operation string, offset, pageSize int) string {
	if r.pageURLBase == "" {
		return ""
	}
	q := url.Values{}
	q.Set("offset", fmt.Sprintf("%d", offset))
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	return fmt.Sprintf("%s/%s?%s", r.pageURLBase, operation, q.Encode())
}
