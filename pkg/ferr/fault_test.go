package ferr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterpolatesParams(t *testing.T) {
	fault := New(NullParameter, "typeGUID", "GetTypeDefByGUID", "repository")
	assert.Equal(t, KindInvalidInput, fault.Kind)
	assert.Equal(t, "METAREPO-400-001", fault.MessageID)
	assert.Equal(t, []string{"typeGUID", "GetTypeDefByGUID", "repository"}, fault.Params)
	assert.Contains(t, fault.Message, "typeGUID")
	assert.Contains(t, fault.Message, "GetTypeDefByGUID")
	assert.NotEmpty(t, fault.SystemAction)
	assert.NotEmpty(t, fault.UserAction)
}

func TestErrorIncludesMessageID(t *testing.T) {
	fault := New(EntityNotKnown, "guid-1")
	assert.Contains(t, fault.Error(), fault.MessageID)
	assert.Contains(t, fault.Error(), "guid-1")
}

func TestKindOfUnwrapsChain(t *testing.T) {
	fault := New(TypeDefNotKnown, "typedef-asset")
	wrapped := fmt.Errorf("looking up type: %w", fault)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindTypeNotKnown, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, AsFault(errors.New("plain")))
}

func TestWithCauseAndProperty(t *testing.T) {
	cause := errors.New("disk full")
	fault := New(UnclassifiedError, "commit").WithCause(cause).WithProperty("bucket", "entities")

	assert.True(t, errors.Is(fault, cause))
	assert.Equal(t, "entities", fault.Properties["bucket"])

	// The original catalog definition stays untouched.
	base := New(UnclassifiedError, "commit")
	assert.Nil(t, base.CausedBy)
	assert.Nil(t, base.Properties)
}

func TestIsMatchesByKind(t *testing.T) {
	err := New(EntityNotKnown, "guid-1")
	assert.True(t, errors.Is(err, &Fault{Kind: KindEntityNotKnown}))
	assert.False(t, errors.Is(err, &Fault{Kind: KindRelationshipNotKnown}))
}

func TestStatusCodeMapping(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidInput:         400,
		KindPagingError:          400,
		KindNotDeleted:           400,
		KindUserNotAuthorized:    401,
		KindHomeOwnership:        403,
		KindEntityNotKnown:       404,
		KindProxyOnly:            404,
		KindTypeAlreadyKnown:     409,
		KindEntityConflict:       409,
		KindFunctionNotSupported: 501,
		KindRepositoryError:      500,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.StatusCode(), "kind %s", kind)
	}
}
