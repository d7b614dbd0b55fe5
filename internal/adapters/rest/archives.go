package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"metarepo/internal/archive"
	"metarepo/pkg/instance"
	"metarepo/pkg/response"
)

func (h *handlers) mountArchives(r chi.Router) {
	r.Route("/archives", func(r chi.Router) {
		r.Get("/", h.listArchives)
		r.Post("/", h.exportArchive)
		r.Get("/{archiveID}", h.getArchive)
		r.Delete("/{archiveID}", h.deleteArchive)
	})
}

func (h *handlers) listArchives(w http.ResponseWriter, r *http.Request) {
	infos, err := h.exporter.List(r.Context())
	if err != nil {
		writeResponse(h, w, response.Fail[[]archive.Info](err))
		return
	}
	writeResponse(h, w, response.OK(infos))
}

func (h *handlers) exportArchive(w http.ResponseWriter, r *http.Request) {
	var graph instance.Graph
	if !h.decode(w, r, &graph) {
		return
	}
	info, err := h.exporter.Export(r.Context(), userID(r), graph)
	if err != nil {
		writeResponse(h, w, response.Fail[archive.Info](err))
		return
	}
	writeResponse(h, w, response.OK(info))
}

func (h *handlers) getArchive(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.exporter.Load(r.Context(), chi.URLParam(r, "archiveID"))
	if err != nil {
		writeResponse(h, w, response.Fail[archive.Manifest](err))
		return
	}
	writeResponse(h, w, response.OK(manifest))
}

func (h *handlers) deleteArchive(w http.ResponseWriter, r *http.Request) {
	existed, err := h.exporter.Delete(r.Context(), chi.URLParam(r, "archiveID"))
	if err != nil {
		writeResponse(h, w, response.Fail[bool](err))
		return
	}
	writeResponse(h, w, response.OK(existed))
}
