// Package ferr defines the error taxonomy shared by the metadata
// repository core: enumerated fault kinds, stable message identifiers,
// and the Fault type every delegate raises and the facade converts into
// response envelopes.
package ferr

// Kind classifies a fault raised by a metadata collection or by the
// facade itself. Clients branch on Kind, never on message prose.
type Kind string

// Fault kinds recognised across the repository core.
const (
	// KindInvalidInput reports a null or malformed parameter, including a
	// failed patch validation or a type guid/name mismatch on delete.
	KindInvalidInput Kind = "invalid_input"
	// KindRepositoryError reports a missing or misconfigured backing store.
	KindRepositoryError Kind = "repository_error"
	// KindUserNotAuthorized reports a rejected caller identity.
	KindUserNotAuthorized Kind = "user_not_authorized"
	// KindTypeNotKnown reports a referenced type definition that is absent.
	KindTypeNotKnown Kind = "type_not_known"
	// KindEntityNotKnown reports a referenced entity that is absent.
	KindEntityNotKnown Kind = "entity_not_known"
	// KindRelationshipNotKnown reports a referenced relationship that is absent.
	KindRelationshipNotKnown Kind = "relationship_not_known"
	// KindTypeAlreadyKnown reports an addTypeDef for a type already registered.
	KindTypeAlreadyKnown Kind = "type_already_known"
	// KindTypeConflict reports a type identifier collision.
	KindTypeConflict Kind = "type_conflict"
	// KindEntityConflict reports an entity identifier collision, notably
	// during reference-copy ingestion.
	KindEntityConflict Kind = "entity_conflict"
	// KindRelationshipConflict reports a relationship identifier collision.
	KindRelationshipConflict Kind = "relationship_conflict"
	// KindPatchError reports a type definition patch that cannot apply.
	KindPatchError Kind = "patch_error"
	// KindPropertyError reports instance properties incompatible with the type.
	KindPropertyError Kind = "property_error"
	// KindClassificationError reports an invalid classification for the type.
	KindClassificationError Kind = "classification_error"
	// KindTypeMismatch reports an instance whose type disagrees with the caller.
	KindTypeMismatch Kind = "type_mismatch"
	// KindStatusNotSupported reports a lifecycle state not valid here.
	KindStatusNotSupported Kind = "status_not_supported"
	// KindNotDeleted reports a purge or restore on a non-deleted instance.
	KindNotDeleted Kind = "instance_not_deleted"
	// KindProxyOnly reports a detail request for an entity held only as a proxy.
	KindProxyOnly Kind = "entity_proxy_only"
	// KindHomeOwnership reports a reference-copy operation that conflicts
	// with local home ownership.
	KindHomeOwnership Kind = "home_ownership"
	// KindFunctionNotSupported reports an optional capability this
	// collection does not implement.
	KindFunctionNotSupported Kind = "function_not_supported"
	// KindPagingError reports an inconsistent offset/page-size combination.
	KindPagingError Kind = "paging_error"
)

// StatusCode maps a fault kind to the HTTP-ish related status code carried
// in response envelopes.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput, KindPatchError, KindPagingError, KindTypeMismatch,
		KindPropertyError, KindClassificationError, KindStatusNotSupported,
		KindNotDeleted:
		return 400
	case KindUserNotAuthorized:
		return 401
	case KindHomeOwnership:
		return 403
	case KindTypeNotKnown, KindEntityNotKnown, KindRelationshipNotKnown,
		KindProxyOnly:
		return 404
	case KindTypeAlreadyKnown, KindTypeConflict, KindEntityConflict,
		KindRelationshipConflict:
		return 409
	case KindFunctionNotSupported:
		return 501
	default:
		return 500
	}
}
