package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"metarepo/internal/archive"
	"metarepo/internal/cohort"
	"metarepo/internal/repo"
	"metarepo/pkg/collection"
	"metarepo/pkg/instance"
	"metarepo/pkg/response"
)

type handlers struct {
	repo     *repo.LocalRepository
	cohorts  *cohort.Manager
	exporter *archive.Exporter
	logger   zerolog.Logger
}

func userID(r *http.Request) string { return chi.URLParam(r, "userID") }

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

// writeResponse renders a facade response, using the envelope's related
// status code as the HTTP status.
func writeResponse[T any](h *handlers, w http.ResponseWriter, resp response.Response[T]) {
	h.writeJSON(w, resp.RelatedStatusCode, resp)
}

func writePaged[T any](h *handlers, w http.ResponseWriter, resp response.PagedResponse[T]) {
	h.writeJSON(w, resp.RelatedStatusCode, resp)
}

func (h *handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{"related_status_code": status, "message": msg})
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pageFromQuery builds a page request from the standard query
// parameters: offset, pageSize, status (comma separated), sequencing,
// sequencingProperty, asOfTime (RFC 3339).
func pageFromQuery(r *http.Request) (collection.PageRequest, error) {
	q := r.URL.Query()
	var page collection.PageRequest
	var err error
	if raw := q.Get("offset"); raw != "" {
		if page.Offset, err = strconv.Atoi(raw); err != nil {
			return page, err
		}
	}
	if raw := q.Get("pageSize"); raw != "" {
		if page.PageSize, err = strconv.Atoi(raw); err != nil {
			return page, err
		}
	}
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			page.StatusFilter = append(page.StatusFilter, instance.Status(strings.TrimSpace(s)))
		}
	}
	page.SequencingOrder = collection.SequencingOrder(q.Get("sequencing"))
	page.SequencingProperty = q.Get("sequencingProperty")
	if raw := q.Get("asOfTime"); raw != "" {
		if page.AsOfTime, err = time.Parse(time.RFC3339, raw); err != nil {
			return page, err
		}
	}
	return page, nil
}

func statusFilterFromQuery(r *http.Request) []instance.Status {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil
	}
	var out []instance.Status
	for _, s := range strings.Split(raw, ",") {
		out = append(out, instance.Status(strings.TrimSpace(s)))
	}
	return out
}
