package ferr

// MessageDefinition describes one entry in the fault catalog: a stable id,
// a printf template for the human-readable message, and the guidance
// strings surfaced to operators and callers.
type MessageDefinition struct {
	ID           string
	Kind         Kind
	Template     string
	SystemAction string
	UserAction   string
}

// Catalog of fault definitions raised by the repository core. Message ids
// are stable; templates interpolate the listed parameters in order.
var (
	NullParameter = MessageDefinition{
		ID:           "METAREPO-400-001",
		Kind:         KindInvalidInput,
		Template:     "a null or empty %s parameter was passed to method %s of service %s",
		SystemAction: "The request was rejected before any state changed.",
		UserAction:   "Supply a value for the named parameter and retry.",
	}
	NullPatch = MessageDefinition{
		ID:           "METAREPO-400-002",
		Kind:         KindInvalidInput,
		Template:     "a null type definition patch was passed to method %s",
		SystemAction: "The patch was not applied.",
		UserAction:   "Supply a populated patch and retry.",
	}
	TypeGUIDMismatch = MessageDefinition{
		ID:           "METAREPO-400-003",
		Kind:         KindInvalidInput,
		Template:     "supplied type %s (%s) does not match the stored type of instance %s",
		SystemAction: "The instance was left unchanged.",
		UserAction:   "Confirm the instance's type before retrying the operation.",
	}
	NegativeOffset = MessageDefinition{
		ID:           "METAREPO-400-004",
		Kind:         KindPagingError,
		Template:     "paging values offset=%s pageSize=%s passed to method %s are inconsistent",
		SystemAction: "No results were returned.",
		UserAction:   "Use a non-negative offset and a non-negative page size.",
	}
	InvalidStatus = MessageDefinition{
		ID:           "METAREPO-400-005",
		Kind:         KindStatusNotSupported,
		Template:     "status %s is not supported for instances of type %s",
		SystemAction: "The instance status was left unchanged.",
		UserAction:   "Choose one of the statuses listed in the type definition.",
	}
	InstanceNotDeleted = MessageDefinition{
		ID:           "METAREPO-400-006",
		Kind:         KindNotDeleted,
		Template:     "instance %s is not in DELETED state so method %s cannot proceed",
		SystemAction: "The instance was left unchanged.",
		UserAction:   "Soft-delete the instance first, then retry.",
	}
	PropertyNotValidForType = MessageDefinition{
		ID:           "METAREPO-400-007",
		Kind:         KindPropertyError,
		Template:     "property %s is not defined for type %s",
		SystemAction: "The instance was not stored or updated.",
		UserAction:   "Remove the property or patch the type definition to add it.",
	}
	ClassificationNotValid = MessageDefinition{
		ID:           "METAREPO-400-008",
		Kind:         KindClassificationError,
		Template:     "classification %s cannot be attached to entities of type %s",
		SystemAction: "The classification was not attached.",
		UserAction:   "Check the classification's valid entity types.",
	}
	NoLocalRepository = MessageDefinition{
		ID:           "METAREPO-500-001",
		Kind:         KindRepositoryError,
		Template:     "no local metadata collection is configured for method %s",
		SystemAction: "The request failed before reaching a store.",
		UserAction:   "Configure a local repository and restart the server.",
	}
	UnclassifiedError = MessageDefinition{
		ID:           "METAREPO-500-002",
		Kind:         KindRepositoryError,
		Template:     "an unclassified error was caught by the repository facade: %s",
		SystemAction: "The request failed; local state may be unchanged.",
		UserAction:   "Check the server log for the underlying cause.",
	}
	UserNotAuthorized = MessageDefinition{
		ID:           "METAREPO-401-001",
		Kind:         KindUserNotAuthorized,
		Template:     "user %s is not authorized to call method %s",
		SystemAction: "The request was rejected.",
		UserAction:   "Request access from the repository administrator.",
	}
	TypeDefNotKnown = MessageDefinition{
		ID:           "METAREPO-404-001",
		Kind:         KindTypeNotKnown,
		Template:     "type definition %s is not known to this repository",
		SystemAction: "The request failed without changing any state.",
		UserAction:   "Verify the type identifier, or register the type first.",
	}
	EntityNotKnown = MessageDefinition{
		ID:           "METAREPO-404-002",
		Kind:         KindEntityNotKnown,
		Template:     "entity %s is not known to this repository",
		SystemAction: "The request failed without changing any state.",
		UserAction:   "Verify the entity guid.",
	}
	RelationshipNotKnown = MessageDefinition{
		ID:           "METAREPO-404-003",
		Kind:         KindRelationshipNotKnown,
		Template:     "relationship %s is not known to this repository",
		SystemAction: "The request failed without changing any state.",
		UserAction:   "Verify the relationship guid.",
	}
	EntityProxyOnly = MessageDefinition{
		ID:           "METAREPO-404-004",
		Kind:         KindProxyOnly,
		Template:     "entity %s is only held as a proxy so full detail is unavailable locally",
		SystemAction: "The summary form is still retrievable.",
		UserAction:   "Query the entity's home repository for full detail.",
	}
	ClassificationNotFound = MessageDefinition{
		ID:           "METAREPO-404-005",
		Kind:         KindClassificationError,
		Template:     "classification %s is not attached to entity %s",
		SystemAction: "The entity was left unchanged.",
		UserAction:   "List the entity's classifications to see what is attached.",
	}
	TypeDefAlreadyKnown = MessageDefinition{
		ID:           "METAREPO-409-001",
		Kind:         KindTypeAlreadyKnown,
		Template:     "type definition %s (%s) is already registered",
		SystemAction: "The existing definition was left unchanged.",
		UserAction:   "Use verifyTypeDef to confirm compatibility instead of re-adding.",
	}
	TypeDefConflict = MessageDefinition{
		ID:           "METAREPO-409-002",
		Kind:         KindTypeConflict,
		Template:     "type definition %s conflicts with one already registered under the same identifier",
		SystemAction: "The existing definition was left unchanged.",
		UserAction:   "Re-identify one of the colliding types.",
	}
	EntityAlreadyExists = MessageDefinition{
		ID:           "METAREPO-409-003",
		Kind:         KindEntityConflict,
		Template:     "entity %s already exists in this repository",
		SystemAction: "The stored entity was left unchanged.",
		UserAction:   "Use a fresh guid or update the existing entity.",
	}
	RelationshipAlreadyExists = MessageDefinition{
		ID:           "METAREPO-409-004",
		Kind:         KindRelationshipConflict,
		Template:     "relationship %s already exists in this repository",
		SystemAction: "The stored relationship was left unchanged.",
		UserAction:   "Use a fresh guid or update the existing relationship.",
	}
	TypeDefInUse = MessageDefinition{
		ID:           "METAREPO-409-005",
		Kind:         KindTypeConflict,
		Template:     "type definition %s cannot be deleted while instances of it exist",
		SystemAction: "The type definition was left registered.",
		UserAction:   "Purge all instances of the type before deleting it.",
	}
	PatchVersionOrder = MessageDefinition{
		ID:           "METAREPO-400-010",
		Kind:         KindPatchError,
		Template:     "patch for type %s has updateToVersion %s not greater than applyToVersion %s",
		SystemAction: "The patch was not applied.",
		UserAction:   "Correct the patch version numbers.",
	}
	PatchMissingField = MessageDefinition{
		ID:           "METAREPO-400-011",
		Kind:         KindPatchError,
		Template:     "patch for type %s is missing mandatory field %s",
		SystemAction: "The patch was not applied.",
		UserAction:   "Populate the mandatory patch fields.",
	}
	PatchFutureVersion = MessageDefinition{
		ID:           "METAREPO-400-012",
		Kind:         KindPatchError,
		Template:     "patch targets version %s of type %s but the local copy is at version %s",
		SystemAction: "The patch was not applied; the local type is behind the cohort.",
		UserAction:   "Apply the intermediate patches first.",
	}
	PatchAttributeTypeChange = MessageDefinition{
		ID:           "METAREPO-400-013",
		Kind:         KindPatchError,
		Template:     "patch redefines attribute %s of type %s with a different attribute type",
		SystemAction: "The patch was not applied.",
		UserAction:   "Add a new attribute instead of changing an existing one's type.",
	}
	HomeCollectionConflict = MessageDefinition{
		ID:           "METAREPO-403-001",
		Kind:         KindHomeOwnership,
		Template:     "instance %s claims home collection %s which is this repository's own collection",
		SystemAction: "The reference copy was not stored.",
		UserAction:   "Reference copies must originate from a different repository.",
	}
	NotHomeInstance = MessageDefinition{
		ID:           "METAREPO-403-003",
		Kind:         KindHomeOwnership,
		Template:     "instance %s is homed in collection %s so method %s must be routed to its home repository",
		SystemAction: "The local reference copy was left unchanged.",
		UserAction:   "Send the request to the instance's home repository.",
	}
	NotReferenceCopy = MessageDefinition{
		ID:           "METAREPO-403-002",
		Kind:         KindHomeOwnership,
		Template:     "instance %s is locally home-owned so method %s cannot treat it as a reference copy",
		SystemAction: "The local authoritative copy was left unchanged.",
		UserAction:   "Use the standard lifecycle operations for home instances.",
	}
	MethodNotSupported = MessageDefinition{
		ID:           "METAREPO-501-001",
		Kind:         KindFunctionNotSupported,
		Template:     "method %s is not supported by metadata collection %s",
		SystemAction: "The request failed without changing any state.",
		UserAction:   "Route the request to a repository that supports this capability.",
	}
	FederationNotConfigured = MessageDefinition{
		ID:           "METAREPO-503-001",
		Kind:         KindRepositoryError,
		Template:     "no metadata highway is configured so cohort services are unavailable",
		SystemAction: "Cohort membership queries were not run.",
		UserAction:   "Enable federation in the server configuration.",
	}
	TypeMismatch = MessageDefinition{
		ID:           "METAREPO-400-014",
		Kind:         KindTypeMismatch,
		Template:     "instance %s carries type %s which is incompatible with requested type %s",
		SystemAction: "The request failed without changing any state.",
		UserAction:   "Check the instance's actual type before retrying.",
	}
)
