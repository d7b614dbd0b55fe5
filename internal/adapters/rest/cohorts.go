package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"metarepo/internal/cohort"
	"metarepo/pkg/response"
)

func (h *handlers) mountCohorts(r chi.Router) {
	r.Route("/cohorts", func(r chi.Router) {
		r.Get("/", h.listCohorts)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getCohort)
			r.Post("/connect", h.connectToCohort)
			r.Post("/disconnect", h.disconnectFromCohort)
			r.Post("/members", h.registerRemoteMember)
			r.Delete("/members/{collectionID}", h.unregisterRemoteMember)
		})
	})
}

func (h *handlers) listCohorts(w http.ResponseWriter, r *http.Request) {
	descs, err := h.cohorts.Cohorts()
	if err != nil {
		writeResponse(h, w, response.Fail[[]cohort.Description](err))
		return
	}
	writeResponse(h, w, response.OK(descs))
}

func (h *handlers) getCohort(w http.ResponseWriter, r *http.Request) {
	desc, err := h.cohorts.Cohort(chi.URLParam(r, "name"))
	if err != nil {
		writeResponse(h, w, response.Fail[cohort.Description](err))
		return
	}
	writeResponse(h, w, response.OK(desc))
}

func (h *handlers) connectToCohort(w http.ResponseWriter, r *http.Request) {
	desc, err := h.cohorts.ConnectToCohort(chi.URLParam(r, "name"))
	if err != nil {
		writeResponse(h, w, response.Fail[cohort.Description](err))
		return
	}
	writeResponse(h, w, response.OK(desc))
}

func (h *handlers) disconnectFromCohort(w http.ResponseWriter, r *http.Request) {
	permanent, _ := strconv.ParseBool(r.URL.Query().Get("permanent"))
	if err := h.cohorts.DisconnectFromCohort(chi.URLParam(r, "name"), permanent); err != nil {
		writeResponse(h, w, response.Fail[struct{}](err))
		return
	}
	writeResponse(h, w, response.OKVoid())
}

func (h *handlers) registerRemoteMember(w http.ResponseWriter, r *http.Request) {
	var reg cohort.Registration
	if !h.decode(w, r, &reg) {
		return
	}
	if err := h.cohorts.RegisterRemoteMember(chi.URLParam(r, "name"), reg); err != nil {
		writeResponse(h, w, response.Fail[struct{}](err))
		return
	}
	writeResponse(h, w, response.OKVoid())
}

func (h *handlers) unregisterRemoteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.cohorts.UnregisterRemoteMember(chi.URLParam(r, "name"), chi.URLParam(r, "collectionID")); err != nil {
		writeResponse(h, w, response.Fail[struct{}](err))
		return
	}
	writeResponse(h, w, response.OKVoid())
}
