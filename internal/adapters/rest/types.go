package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"metarepo/pkg/typedef"
)

func (h *handlers) mountTypes(r chi.Router) {
	r.Route("/types", func(r chi.Router) {
		r.Get("/", h.getAllTypes)
		r.Post("/", h.addTypeDefGallery)
		r.Get("/search", h.searchForTypeDefs)

		r.Route("/typedefs", func(r chi.Router) {
			r.Post("/", h.addTypeDef)
			r.Patch("/", h.updateTypeDef)
			r.Get("/category/{category}", h.findTypeDefsByCategory)
			r.Get("/property", h.findTypeDefsByProperty)
			r.Get("/external-id", h.findTypesByExternalID)
			r.Get("/name/{name}", h.getTypeDefByName)
			r.Get("/{guid}", h.getTypeDefByGUID)
			r.Delete("/{guid}", h.deleteTypeDef)
			r.Post("/{guid}/verify", h.verifyTypeDef)
			r.Post("/{guid}/identity", h.reIdentifyTypeDef)
		})

		r.Route("/attribute-typedefs", func(r chi.Router) {
			r.Post("/", h.addAttributeTypeDef)
			r.Get("/category/{category}", h.findAttributeTypeDefsByCategory)
			r.Get("/name/{name}", h.getAttributeTypeDefByName)
			r.Get("/{guid}", h.getAttributeTypeDefByGUID)
			r.Delete("/{guid}", h.deleteAttributeTypeDef)
			r.Post("/{guid}/verify", h.verifyAttributeTypeDef)
			r.Post("/{guid}/identity", h.reIdentifyAttributeTypeDef)
		})
	})
}

func (h *handlers) getAllTypes(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetAllTypes(r.Context(), userID(r)))
}

func (h *handlers) getTypeDefByGUID(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetTypeDefByGUID(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) getTypeDefByName(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetTypeDefByName(r.Context(), userID(r), chi.URLParam(r, "name")))
}

func (h *handlers) getAttributeTypeDefByGUID(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetAttributeTypeDefByGUID(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) getAttributeTypeDefByName(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetAttributeTypeDefByName(r.Context(), userID(r), chi.URLParam(r, "name")))
}

func (h *handlers) findTypeDefsByCategory(w http.ResponseWriter, r *http.Request) {
	category := typedef.Category(chi.URLParam(r, "category"))
	writeResponse(h, w, h.repo.FindTypeDefsByCategory(r.Context(), userID(r), category))
}

func (h *handlers) findAttributeTypeDefsByCategory(w http.ResponseWriter, r *http.Request) {
	category := typedef.AttributeCategory(chi.URLParam(r, "category"))
	writeResponse(h, w, h.repo.FindAttributeTypeDefsByCategory(r.Context(), userID(r), category))
}

func (h *handlers) findTypeDefsByProperty(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["name"]
	writeResponse(h, w, h.repo.FindTypeDefsByProperty(r.Context(), userID(r), names))
}

func (h *handlers) findTypesByExternalID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.FindTypesByExternalID(r.Context(), userID(r), q.Get("standard"), q.Get("organization"), q.Get("identifier")))
}

func (h *handlers) searchForTypeDefs(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.SearchForTypeDefs(r.Context(), userID(r), r.URL.Query().Get("criteria")))
}

func (h *handlers) addTypeDef(w http.ResponseWriter, r *http.Request) {
	var def typedef.TypeDef
	if !h.decode(w, r, &def) {
		return
	}
	writeResponse(h, w, h.repo.AddTypeDef(r.Context(), userID(r), def))
}

func (h *handlers) addAttributeTypeDef(w http.ResponseWriter, r *http.Request) {
	var def typedef.AttributeTypeDef
	if !h.decode(w, r, &def) {
		return
	}
	writeResponse(h, w, h.repo.AddAttributeTypeDef(r.Context(), userID(r), def))
}

func (h *handlers) addTypeDefGallery(w http.ResponseWriter, r *http.Request) {
	var gallery typedef.Gallery
	if !h.decode(w, r, &gallery) {
		return
	}
	writeResponse(h, w, h.repo.AddTypeDefGallery(r.Context(), userID(r), gallery))
}

func (h *handlers) verifyTypeDef(w http.ResponseWriter, r *http.Request) {
	var def typedef.TypeDef
	if !h.decode(w, r, &def) {
		return
	}
	writeResponse(h, w, h.repo.VerifyTypeDef(r.Context(), userID(r), def))
}

func (h *handlers) verifyAttributeTypeDef(w http.ResponseWriter, r *http.Request) {
	var def typedef.AttributeTypeDef
	if !h.decode(w, r, &def) {
		return
	}
	writeResponse(h, w, h.repo.VerifyAttributeTypeDef(r.Context(), userID(r), def))
}

func (h *handlers) updateTypeDef(w http.ResponseWriter, r *http.Request) {
	var patch typedef.Patch
	if !h.decode(w, r, &patch) {
		return
	}
	writeResponse(h, w, h.repo.UpdateTypeDef(r.Context(), userID(r), &patch))
}

func (h *handlers) deleteTypeDef(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.DeleteTypeDef(r.Context(), userID(r), chi.URLParam(r, "guid"), r.URL.Query().Get("name")))
}

func (h *handlers) deleteAttributeTypeDef(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.DeleteAttributeTypeDef(r.Context(), userID(r), chi.URLParam(r, "guid"), r.URL.Query().Get("name")))
}

type reIdentifyTypeRequest struct {
	Name    string `json:"name"`
	NewGUID string `json:"newGUID"`
	NewName string `json:"newName"`
}

func (h *handlers) reIdentifyTypeDef(w http.ResponseWriter, r *http.Request) {
	var req reIdentifyTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReIdentifyTypeDef(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Name, req.NewGUID, req.NewName))
}

func (h *handlers) reIdentifyAttributeTypeDef(w http.ResponseWriter, r *http.Request) {
	var req reIdentifyTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReIdentifyAttributeTypeDef(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Name, req.NewGUID, req.NewName))
}
