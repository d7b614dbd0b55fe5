package memory

import (
	"context"
	"sort"
	"time"

	"metarepo/pkg/collection"
	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/search"
	"metarepo/pkg/typedef"
)

// RelationshipsForEntity returns the relationships attached to an entity,
// optionally restricted to one relationship type and its subtypes.
func (s *Store) RelationshipsForEntity(_ context.Context, _ string, entityGUID, relationshipTypeGUID string, page collection.PageRequest) ([]instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.state.entities[entityGUID]; !ok {
		if _, proxy := s.state.proxies[entityGUID]; !proxy {
			return nil, ferr.New(ferr.EntityNotKnown, entityGUID)
		}
	}
	results := s.collectRelationshipsLocked(page, func(rel instance.Relationship) bool {
		if rel.EntityOne.GUID != entityGUID && rel.EntityTwo.GUID != entityGUID {
			return false
		}
		return s.typeAdmittedLocked(rel.Type.GUID, relationshipTypeGUID)
	})
	s.sortRelationships(results, page)
	return pageSlice(results, page), nil
}

// FindEntitiesByProperty returns entities of the given type (or a subtype)
// whose properties satisfy the predicate.
func (s *Store) FindEntitiesByProperty(_ context.Context, _ string, typeGUID string, predicate search.Predicate, page collection.PageRequest) ([]instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.collectEntitiesLocked(page, func(e instance.EntityDetail) bool {
		return s.typeAdmittedLocked(e.Type.GUID, typeGUID) && predicate.Matches(e.Properties)
	})
	s.sortEntities(results, page)
	return pageSlice(results, page), nil
}

// FindEntitiesByClassification returns entities carrying the named
// classification whose classification properties satisfy the predicate.
func (s *Store) FindEntitiesByClassification(_ context.Context, _ string, typeGUID, classificationName string, predicate search.Predicate, page collection.PageRequest) ([]instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if classificationName != "" {
		if def, ok := s.typeDefByNameLocked(classificationName); !ok || def.Category != typedef.CategoryClassificationDef {
			return nil, ferr.New(ferr.TypeDefNotKnown, classificationName)
		}
	}
	results := s.collectEntitiesLocked(page, func(e instance.EntityDetail) bool {
		if !s.typeAdmittedLocked(e.Type.GUID, typeGUID) {
			return false
		}
		attached, ok := e.ClassificationByName(classificationName)
		if !ok {
			return false
		}
		return predicate.Matches(attached.Properties)
	})
	s.sortEntities(results, page)
	return pageSlice(results, page), nil
}

// FindEntitiesByPropertyValue returns entities of the given type with any
// string property containing the search value.
func (s *Store) FindEntitiesByPropertyValue(_ context.Context, _ string, typeGUID, searchValue string, page collection.PageRequest) ([]instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.collectEntitiesLocked(page, func(e instance.EntityDetail) bool {
		return s.typeAdmittedLocked(e.Type.GUID, typeGUID) && search.MatchesValue(e.Properties, searchValue)
	})
	s.sortEntities(results, page)
	return pageSlice(results, page), nil
}

// FindRelationshipsByProperty returns relationships of the given type whose
// properties satisfy the predicate.
func (s *Store) FindRelationshipsByProperty(_ context.Context, _ string, typeGUID string, predicate search.Predicate, page collection.PageRequest) ([]instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.collectRelationshipsLocked(page, func(rel instance.Relationship) bool {
		return s.typeAdmittedLocked(rel.Type.GUID, typeGUID) && predicate.Matches(rel.Properties)
	})
	s.sortRelationships(results, page)
	return pageSlice(results, page), nil
}

// FindRelationshipsByPropertyValue returns relationships of the given type
// with any string property containing the search value.
func (s *Store) FindRelationshipsByPropertyValue(_ context.Context, _ string, typeGUID, searchValue string, page collection.PageRequest) ([]instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.collectRelationshipsLocked(page, func(rel instance.Relationship) bool {
		return s.typeAdmittedLocked(rel.Type.GUID, typeGUID) && search.MatchesValue(rel.Properties, searchValue)
	})
	s.sortRelationships(results, page)
	return pageSlice(results, page), nil
}

// LinkingEntities returns the entities and relationships along a shortest
// path between two entities. An empty graph means no path exists.
func (s *Store) LinkingEntities(_ context.Context, _ string, startGUID, endGUID string, statusFilter []instance.Status) (instance.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admits := collection.PageRequest{StatusFilter: statusFilter}
	start, err := s.entityDetailLocked(startGUID)
	if err != nil {
		return instance.Graph{}, err
	}
	if _, err := s.entityDetailLocked(endGUID); err != nil {
		return instance.Graph{}, err
	}
	if startGUID == endGUID {
		return instance.Graph{Entities: []instance.EntityDetail{start}}, nil
	}
	// Breadth-first search over admitted relationships, recording the
	// relationship that first reached each entity.
	via := map[string]string{startGUID: ""}
	queue := []string{startGUID}
	for len(queue) > 0 && via[endGUID] == "" {
		current := queue[0]
		queue = queue[1:]
		for relGUID, rec := range s.state.relationships {
			rel := rec.Current
			if !admits.AdmitsStatus(rel.Status) {
				continue
			}
			var next string
			switch current {
			case rel.EntityOne.GUID:
				next = rel.EntityTwo.GUID
			case rel.EntityTwo.GUID:
				next = rel.EntityOne.GUID
			default:
				continue
			}
			if _, seen := via[next]; seen {
				continue
			}
			via[next] = relGUID
			queue = append(queue, next)
		}
	}
	if _, reached := via[endGUID]; !reached {
		return instance.Graph{}, nil
	}
	var graph instance.Graph
	for at := endGUID; at != ""; {
		if rec, ok := s.state.entities[at]; ok {
			graph.Entities = append(graph.Entities, rec.Current.Clone())
		}
		relGUID := via[at]
		if relGUID == "" {
			break
		}
		rel := s.state.relationships[relGUID].Current
		graph.Relationships = append(graph.Relationships, rel.Clone())
		if rel.EntityOne.GUID == at {
			at = rel.EntityTwo.GUID
		} else {
			at = rel.EntityOne.GUID
		}
	}
	return graph, nil
}

// EntityNeighborhood returns the subgraph reachable from a starting entity
// within the given number of hops. A negative level means unbounded.
func (s *Store) EntityNeighborhood(_ context.Context, _ string, startGUID string, entityTypeGUIDs, relationshipTypeGUIDs []string, statusFilter []instance.Status, level int) (instance.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admits := collection.PageRequest{StatusFilter: statusFilter}
	start, err := s.entityDetailLocked(startGUID)
	if err != nil {
		return instance.Graph{}, err
	}
	graph := instance.Graph{Entities: []instance.EntityDetail{start}}
	seenEntities := map[string]struct{}{startGUID: {}}
	seenRels := map[string]struct{}{}
	frontier := []string{startGUID}
	for depth := 0; len(frontier) > 0 && (level < 0 || depth < level); depth++ {
		var next []string
		for _, current := range frontier {
			for relGUID, rec := range s.state.relationships {
				rel := rec.Current
				if _, done := seenRels[relGUID]; done {
					continue
				}
				if !admits.AdmitsStatus(rel.Status) {
					continue
				}
				if !typeInList(rel.Type.GUID, relationshipTypeGUIDs) {
					continue
				}
				var other string
				switch current {
				case rel.EntityOne.GUID:
					other = rel.EntityTwo.GUID
				case rel.EntityTwo.GUID:
					other = rel.EntityOne.GUID
				default:
					continue
				}
				otherRec, stored := s.state.entities[other]
				if stored {
					if !admits.AdmitsStatus(otherRec.Current.Status) {
						continue
					}
					if !typeInList(otherRec.Current.Type.GUID, entityTypeGUIDs) {
						continue
					}
				}
				seenRels[relGUID] = struct{}{}
				graph.Relationships = append(graph.Relationships, rel.Clone())
				if _, visited := seenEntities[other]; visited {
					continue
				}
				seenEntities[other] = struct{}{}
				if stored {
					graph.Entities = append(graph.Entities, otherRec.Current.Clone())
				}
				next = append(next, other)
			}
		}
		frontier = next
	}
	return graph, nil
}

// collectEntitiesLocked gathers the entities admitted by the page's status
// filter and as-of time that also satisfy accept.
func (s *Store) collectEntitiesLocked(page collection.PageRequest, accept func(instance.EntityDetail) bool) []instance.EntityDetail {
	var results []instance.EntityDetail
	for _, rec := range s.state.entities {
		e, ok := revisionAsOf(rec.Current, rec.History, page.AsOfTime, func(d instance.EntityDetail) time.Time { return d.UpdateTime })
		if !ok || !page.AdmitsStatus(e.Status) || !accept(e) {
			continue
		}
		results = append(results, e.Clone())
	}
	return results
}

func (s *Store) collectRelationshipsLocked(page collection.PageRequest, accept func(instance.Relationship) bool) []instance.Relationship {
	var results []instance.Relationship
	for _, rec := range s.state.relationships {
		rel, ok := revisionAsOf(rec.Current, rec.History, page.AsOfTime, func(r instance.Relationship) time.Time { return r.UpdateTime })
		if !ok || !page.AdmitsStatus(rel.Status) || !accept(rel) {
			continue
		}
		results = append(results, rel.Clone())
	}
	return results
}

// revisionAsOf selects the revision current at asOf, or the live revision
// when asOf is zero. A record created after asOf yields no revision.
func revisionAsOf[T any](current T, history []T, asOf time.Time, updated func(T) time.Time) (T, bool) {
	if asOf.IsZero() {
		return current, true
	}
	var best T
	found := false
	consider := func(rev T) {
		if updated(rev).After(asOf) {
			return
		}
		if !found || updated(rev).After(updated(best)) {
			best = rev
			found = true
		}
	}
	for _, rev := range history {
		consider(rev)
	}
	consider(current)
	return best, found
}

// typeAdmittedLocked reports whether the instance's type matches the filter
// type or one of its subtypes. An empty filter admits every type.
func (s *Store) typeAdmittedLocked(instanceTypeGUID, filterTypeGUID string) bool {
	if filterTypeGUID == "" {
		return true
	}
	def, ok := s.state.typeDefs[instanceTypeGUID]
	if !ok {
		return instanceTypeGUID == filterTypeGUID
	}
	_, ok = s.typeLineageLocked(def)[filterTypeGUID]
	return ok
}

func typeInList(typeGUID string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, g := range filter {
		if g == typeGUID {
			return true
		}
	}
	return false
}

func (s *Store) sortEntities(list []instance.EntityDetail, page collection.PageRequest) {
	sort.SliceStable(list, func(i, j int) bool {
		return headerLess(list[i].Header, list[j].Header, propertyLess(list[i].Properties, list[j].Properties, page), page)
	})
}

func (s *Store) sortRelationships(list []instance.Relationship, page collection.PageRequest) {
	sort.SliceStable(list, func(i, j int) bool {
		return headerLess(list[i].Header, list[j].Header, propertyLess(list[i].Properties, list[j].Properties, page), page)
	})
}

// headerLess orders two instances under the page's sequencing. Ties and
// the zero sequencing order fall back to guid order so paging is stable.
func headerLess(a, b instance.Header, byProperty int, page collection.PageRequest) bool {
	switch page.SequencingOrder {
	case collection.SequenceCreateTimeRecent:
		if !a.CreateTime.Equal(b.CreateTime) {
			return a.CreateTime.After(b.CreateTime)
		}
	case collection.SequenceCreateTimeOldest:
		if !a.CreateTime.Equal(b.CreateTime) {
			return a.CreateTime.Before(b.CreateTime)
		}
	case collection.SequenceUpdateTimeRecent:
		if !a.UpdateTime.Equal(b.UpdateTime) {
			return a.UpdateTime.After(b.UpdateTime)
		}
	case collection.SequenceUpdateTimeOldest:
		if !a.UpdateTime.Equal(b.UpdateTime) {
			return a.UpdateTime.Before(b.UpdateTime)
		}
	case collection.SequenceProperty:
		if byProperty != 0 {
			return byProperty < 0
		}
	}
	return a.GUID < b.GUID
}

// propertyLess compares the sequencing property of two bags, returning
// -1, 0 or 1. Missing or non-comparable values sort last.
func propertyLess(a, b *properties.InstanceProperties, page collection.PageRequest) int {
	if page.SequencingOrder != collection.SequenceProperty || page.SequencingProperty == "" {
		return 0
	}
	av, aok := sortPrimitive(a, page.SequencingProperty)
	bv, bok := sortPrimitive(b, page.SequencingProperty)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	as, aString := av.Value.(string)
	bs, bString := bv.Value.(string)
	if aString && bString {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	}
	af, aNum := numericOf(av)
	bf, bNum := numericOf(bv)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
	}
	return 0
}

func sortPrimitive(props *properties.InstanceProperties, name string) (properties.PrimitiveValue, bool) {
	if props == nil {
		return properties.PrimitiveValue{}, false
	}
	value, ok := props.Get(name)
	if !ok {
		return properties.PrimitiveValue{}, false
	}
	pv, ok := value.(properties.PrimitiveValue)
	return pv, ok
}

func numericOf(pv properties.PrimitiveValue) (float64, bool) {
	switch v := pv.Value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case byte:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// pageSlice applies the request's offset and page size. A zero page size
// means unbounded.
func pageSlice[T any](list []T, page collection.PageRequest) []T {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if page.PageSize > 0 && len(list) > page.PageSize {
		list = list[:page.PageSize]
	}
	return list
}
