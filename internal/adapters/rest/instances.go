package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/search"
)

func (h *handlers) mountInstances(r chi.Router) {
	r.Route("/entities", func(r chi.Router) {
		r.Post("/", h.addEntity)
		r.Post("/proxy", h.addEntityProxy)
		r.Get("/by-property-value", h.findEntitiesByPropertyValue)
		r.Post("/by-property", h.findEntitiesByProperty)
		r.Post("/by-classification/{name}", h.findEntitiesByClassification)
		r.Get("/from/{startGUID}/to/{endGUID}", h.getLinkingEntities)

		r.Route("/{guid}", func(r chi.Router) {
			r.Get("/", h.getEntityDetail)
			r.Get("/summary", h.getEntitySummary)
			r.Get("/existence", h.isEntityKnown)
			r.Get("/relationships", h.getRelationshipsForEntity)
			r.Get("/neighborhood", h.getEntityNeighborhood)
			r.Post("/status", h.updateEntityStatus)
			r.Post("/properties", h.updateEntityProperties)
			r.Post("/undo", h.undoEntityUpdate)
			r.Delete("/", h.deleteEntity)
			r.Post("/purge", h.purgeEntity)
			r.Post("/restore", h.restoreEntity)
			r.Post("/classifications/{name}", h.classifyEntity)
			r.Put("/classifications/{name}", h.updateEntityClassification)
			r.Delete("/classifications/{name}", h.declassifyEntity)
			r.Post("/identity", h.reIdentifyEntity)
			r.Post("/type", h.reTypeEntity)
			r.Post("/home", h.reHomeEntity)
		})
	})

	r.Route("/relationships", func(r chi.Router) {
		r.Post("/", h.addRelationship)
		r.Get("/by-property-value", h.findRelationshipsByPropertyValue)
		r.Post("/by-property", h.findRelationshipsByProperty)

		r.Route("/{guid}", func(r chi.Router) {
			r.Get("/", h.getRelationship)
			r.Get("/existence", h.isRelationshipKnown)
			r.Post("/status", h.updateRelationshipStatus)
			r.Post("/properties", h.updateRelationshipProperties)
			r.Post("/undo", h.undoRelationshipUpdate)
			r.Delete("/", h.deleteRelationship)
			r.Post("/purge", h.purgeRelationship)
			r.Post("/restore", h.restoreRelationship)
			r.Post("/identity", h.reIdentifyRelationship)
			r.Post("/type", h.reTypeRelationship)
			r.Post("/home", h.reHomeRelationship)
		})
	})

	r.Route("/reference-copies", func(r chi.Router) {
		r.Post("/", h.saveInstanceReferenceCopies)
		r.Post("/entities", h.saveEntityReferenceCopy)
		r.Delete("/entities/{guid}", h.purgeEntityReferenceCopy)
		r.Post("/entities/{guid}/refresh", h.refreshEntityReferenceCopy)
		r.Post("/relationships", h.saveRelationshipReferenceCopy)
		r.Delete("/relationships/{guid}", h.purgeRelationshipReferenceCopy)
		r.Post("/relationships/{guid}/refresh", h.refreshRelationshipReferenceCopy)
	})
}

func (h *handlers) isEntityKnown(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.IsEntityKnown(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) getEntitySummary(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetEntitySummary(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

// getEntityDetail serves current state, or historical state when
// asOfTime is supplied.
func (h *handlers) getEntityDetail(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	if raw := r.URL.Query().Get("asOfTime"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid asOfTime: "+err.Error())
			return
		}
		writeResponse(h, w, h.repo.GetEntityDetailAsOfTime(r.Context(), userID(r), guid, asOf))
		return
	}
	writeResponse(h, w, h.repo.GetEntityDetail(r.Context(), userID(r), guid))
}

func (h *handlers) getRelationshipsForEntity(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	writePaged(h, w, h.repo.GetRelationshipsForEntity(r.Context(), userID(r), chi.URLParam(r, "guid"), r.URL.Query().Get("typeGUID"), page))
}

type findByPropertyRequest struct {
	TypeGUID        string                         `json:"typeGUID"`
	MatchProperties *properties.InstanceProperties `json:"matchProperties"`
	MatchCriteria   search.MatchCriteria           `json:"matchCriteria"`
}

func (h *handlers) findEntitiesByProperty(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	var req findByPropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writePaged(h, w, h.repo.FindEntitiesByProperty(r.Context(), userID(r), req.TypeGUID, req.MatchProperties, req.MatchCriteria, page))
}

func (h *handlers) findEntitiesByClassification(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	var req findByPropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writePaged(h, w, h.repo.FindEntitiesByClassification(r.Context(), userID(r), req.TypeGUID, chi.URLParam(r, "name"), req.MatchProperties, req.MatchCriteria, page))
}

func (h *handlers) findEntitiesByPropertyValue(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	q := r.URL.Query()
	writePaged(h, w, h.repo.FindEntitiesByPropertyValue(r.Context(), userID(r), q.Get("typeGUID"), q.Get("searchCriteria"), page))
}

func (h *handlers) getLinkingEntities(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.GetLinkingEntities(r.Context(), userID(r), chi.URLParam(r, "startGUID"), chi.URLParam(r, "endGUID"), statusFilterFromQuery(r)))
}

func (h *handlers) getEntityNeighborhood(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level := -1
	if raw := q.Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid level: "+err.Error())
			return
		}
		level = parsed
	}
	writeResponse(h, w, h.repo.GetEntityNeighborhood(r.Context(), userID(r), chi.URLParam(r, "guid"), q["entityTypeGUID"], q["relationshipTypeGUID"], statusFilterFromQuery(r), level))
}

type addEntityRequest struct {
	TypeGUID        string                         `json:"typeGUID"`
	Properties      *properties.InstanceProperties `json:"properties"`
	Classifications []instance.Classification      `json:"classifications"`
	InitialStatus   instance.Status                `json:"initialStatus"`
}

func (h *handlers) addEntity(w http.ResponseWriter, r *http.Request) {
	var req addEntityRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.AddEntity(r.Context(), userID(r), req.TypeGUID, req.Properties, req.Classifications, req.InitialStatus))
}

func (h *handlers) addEntityProxy(w http.ResponseWriter, r *http.Request) {
	var proxy instance.EntityProxy
	if !h.decode(w, r, &proxy) {
		return
	}
	writeResponse(h, w, h.repo.AddEntityProxy(r.Context(), userID(r), &proxy))
}

type statusRequest struct {
	Status instance.Status `json:"status"`
}

func (h *handlers) updateEntityStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.UpdateEntityStatus(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Status))
}

type propertiesRequest struct {
	Properties *properties.InstanceProperties `json:"properties"`
}

func (h *handlers) updateEntityProperties(w http.ResponseWriter, r *http.Request) {
	var req propertiesRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.UpdateEntityProperties(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Properties))
}

func (h *handlers) undoEntityUpdate(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.UndoEntityUpdate(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) deleteEntity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.DeleteEntity(r.Context(), userID(r), q.Get("typeGUID"), q.Get("typeName"), chi.URLParam(r, "guid")))
}

func (h *handlers) purgeEntity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.PurgeEntity(r.Context(), userID(r), q.Get("typeGUID"), q.Get("typeName"), chi.URLParam(r, "guid")))
}

func (h *handlers) restoreEntity(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.RestoreEntity(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) classifyEntity(w http.ResponseWriter, r *http.Request) {
	var req propertiesRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ClassifyEntity(r.Context(), userID(r), chi.URLParam(r, "guid"), chi.URLParam(r, "name"), req.Properties))
}

func (h *handlers) updateEntityClassification(w http.ResponseWriter, r *http.Request) {
	var req propertiesRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.UpdateEntityClassification(r.Context(), userID(r), chi.URLParam(r, "guid"), chi.URLParam(r, "name"), req.Properties))
}

func (h *handlers) declassifyEntity(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.DeclassifyEntity(r.Context(), userID(r), chi.URLParam(r, "guid"), chi.URLParam(r, "name")))
}

type reIdentifyRequest struct {
	TypeGUID string `json:"typeGUID"`
	TypeName string `json:"typeName"`
	NewGUID  string `json:"newGUID"`
}

func (h *handlers) reIdentifyEntity(w http.ResponseWriter, r *http.Request) {
	var req reIdentifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReIdentifyEntity(r.Context(), userID(r), req.TypeGUID, req.TypeName, chi.URLParam(r, "guid"), req.NewGUID))
}

type reTypeRequest struct {
	CurrentType instance.TypeRef `json:"currentType"`
	NewType     instance.TypeRef `json:"newType"`
}

func (h *handlers) reTypeEntity(w http.ResponseWriter, r *http.Request) {
	var req reTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReTypeEntity(r.Context(), userID(r), chi.URLParam(r, "guid"), req.CurrentType, req.NewType))
}

type reHomeRequest struct {
	TypeGUID              string `json:"typeGUID"`
	TypeName              string `json:"typeName"`
	HomeCollectionID      string `json:"homeCollectionID"`
	NewHomeCollectionID   string `json:"newHomeCollectionID"`
	NewHomeCollectionName string `json:"newHomeCollectionName"`
}

func (h *handlers) reHomeEntity(w http.ResponseWriter, r *http.Request) {
	var req reHomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReHomeEntity(r.Context(), userID(r), chi.URLParam(r, "guid"), req.TypeGUID, req.TypeName, req.HomeCollectionID, req.NewHomeCollectionID, req.NewHomeCollectionName))
}

func (h *handlers) isRelationshipKnown(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.IsRelationshipKnown(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) getRelationship(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	if raw := r.URL.Query().Get("asOfTime"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid asOfTime: "+err.Error())
			return
		}
		writeResponse(h, w, h.repo.GetRelationshipAsOfTime(r.Context(), userID(r), guid, asOf))
		return
	}
	writeResponse(h, w, h.repo.GetRelationship(r.Context(), userID(r), guid))
}

func (h *handlers) findRelationshipsByProperty(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	var req findByPropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writePaged(h, w, h.repo.FindRelationshipsByProperty(r.Context(), userID(r), req.TypeGUID, req.MatchProperties, req.MatchCriteria, page))
}

func (h *handlers) findRelationshipsByPropertyValue(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters: "+err.Error())
		return
	}
	q := r.URL.Query()
	writePaged(h, w, h.repo.FindRelationshipsByPropertyValue(r.Context(), userID(r), q.Get("typeGUID"), q.Get("searchCriteria"), page))
}

type addRelationshipRequest struct {
	TypeGUID      string                         `json:"typeGUID"`
	Properties    *properties.InstanceProperties `json:"properties"`
	EntityOneGUID string                         `json:"entityOneGUID"`
	EntityTwoGUID string                         `json:"entityTwoGUID"`
	InitialStatus instance.Status                `json:"initialStatus"`
}

func (h *handlers) addRelationship(w http.ResponseWriter, r *http.Request) {
	var req addRelationshipRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.AddRelationship(r.Context(), userID(r), req.TypeGUID, req.Properties, req.EntityOneGUID, req.EntityTwoGUID, req.InitialStatus))
}

func (h *handlers) updateRelationshipStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.UpdateRelationshipStatus(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Status))
}

func (h *handlers) updateRelationshipProperties(w http.ResponseWriter, r *http.Request) {
	var req propertiesRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.UpdateRelationshipProperties(r.Context(), userID(r), chi.URLParam(r, "guid"), req.Properties))
}

func (h *handlers) undoRelationshipUpdate(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.UndoRelationshipUpdate(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) deleteRelationship(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.DeleteRelationship(r.Context(), userID(r), q.Get("typeGUID"), q.Get("typeName"), chi.URLParam(r, "guid")))
}

func (h *handlers) purgeRelationship(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.PurgeRelationship(r.Context(), userID(r), q.Get("typeGUID"), q.Get("typeName"), chi.URLParam(r, "guid")))
}

func (h *handlers) restoreRelationship(w http.ResponseWriter, r *http.Request) {
	writeResponse(h, w, h.repo.RestoreRelationship(r.Context(), userID(r), chi.URLParam(r, "guid")))
}

func (h *handlers) reIdentifyRelationship(w http.ResponseWriter, r *http.Request) {
	var req reIdentifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReIdentifyRelationship(r.Context(), userID(r), req.TypeGUID, req.TypeName, chi.URLParam(r, "guid"), req.NewGUID))
}

func (h *handlers) reTypeRelationship(w http.ResponseWriter, r *http.Request) {
	var req reTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReTypeRelationship(r.Context(), userID(r), chi.URLParam(r, "guid"), req.CurrentType, req.NewType))
}

func (h *handlers) reHomeRelationship(w http.ResponseWriter, r *http.Request) {
	var req reHomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeResponse(h, w, h.repo.ReHomeRelationship(r.Context(), userID(r), chi.URLParam(r, "guid"), req.TypeGUID, req.TypeName, req.HomeCollectionID, req.NewHomeCollectionID, req.NewHomeCollectionName))
}

func (h *handlers) saveEntityReferenceCopy(w http.ResponseWriter, r *http.Request) {
	var entity instance.EntityDetail
	if !h.decode(w, r, &entity) {
		return
	}
	writeResponse(h, w, h.repo.SaveEntityReferenceCopy(r.Context(), userID(r), entity))
}

func (h *handlers) purgeEntityReferenceCopy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.PurgeEntityReferenceCopy(r.Context(), userID(r), chi.URLParam(r, "guid"), q.Get("typeGUID"), q.Get("typeName"), q.Get("homeCollectionID")))
}

func (h *handlers) refreshEntityReferenceCopy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.RefreshEntityReferenceCopy(r.Context(), userID(r), chi.URLParam(r, "guid"), q.Get("typeGUID"), q.Get("typeName"), q.Get("homeCollectionID")))
}

func (h *handlers) saveRelationshipReferenceCopy(w http.ResponseWriter, r *http.Request) {
	var rel instance.Relationship
	if !h.decode(w, r, &rel) {
		return
	}
	writeResponse(h, w, h.repo.SaveRelationshipReferenceCopy(r.Context(), userID(r), rel))
}

func (h *handlers) purgeRelationshipReferenceCopy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.PurgeRelationshipReferenceCopy(r.Context(), userID(r), chi.URLParam(r, "guid"), q.Get("typeGUID"), q.Get("typeName"), q.Get("homeCollectionID")))
}

func (h *handlers) refreshRelationshipReferenceCopy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResponse(h, w, h.repo.RefreshRelationshipReferenceCopy(r.Context(), userID(r), chi.URLParam(r, "guid"), q.Get("typeGUID"), q.Get("typeName"), q.Get("homeCollectionID")))
}

func (h *handlers) saveInstanceReferenceCopies(w http.ResponseWriter, r *http.Request) {
	var graph instance.Graph
	if !h.decode(w, r, &graph) {
		return
	}
	writeResponse(h, w, h.repo.SaveInstanceReferenceCopies(r.Context(), userID(r), graph))
}
