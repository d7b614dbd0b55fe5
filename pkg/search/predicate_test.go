package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/pkg/properties"
)

func sampleBag() *properties.InstanceProperties {
	props := properties.AddStringProperty(nil, "qualifiedName", "payments-db")
	props = properties.AddStringProperty(props, "zone", "eu-west")
	props = properties.AddIntProperty(props, "replicas", 3)
	return props
}

func TestBuildUsesLikeForStrings(t *testing.T) {
	pred := Build(sampleBag(), MatchAll)
	require.Len(t, pred.Conditions, 3)

	ops := map[string]Operator{}
	for _, c := range pred.Conditions {
		ops[c.Property] = c.Operator
	}
	assert.Equal(t, OperatorLike, ops["qualifiedName"])
	assert.Equal(t, OperatorLike, ops["zone"])
	assert.Equal(t, OperatorEquals, ops["replicas"])
}

func TestBuildNilBagMatchesEverything(t *testing.T) {
	pred := Build(nil, MatchAll)
	assert.True(t, pred.IsEmpty())
	assert.True(t, pred.Matches(sampleBag()))
	assert.True(t, pred.Matches(properties.New()))
}

func TestMatchesAllAnyNone(t *testing.T) {
	target := sampleBag()

	exact := Build(sampleBag(), MatchAll)
	assert.True(t, exact.Matches(target))

	partial := Build(properties.AddStringProperty(nil, "zone", "eu"), MatchAll)
	assert.True(t, partial.Matches(target), "substring match on string primitive")

	mixed := properties.AddStringProperty(nil, "zone", "us-east")
	mixed = properties.AddIntProperty(mixed, "replicas", 3)
	anyPred := Build(mixed, MatchAny)
	assert.True(t, anyPred.Matches(target), "replicas condition holds")
	allPred := Build(mixed, MatchAll)
	assert.False(t, allPred.Matches(target), "zone condition fails")
	nonePred := Build(mixed, MatchNone)
	assert.True(t, nonePred.Matches(target), "conjunction fails so none holds")

	noneExact := Build(sampleBag(), MatchNone)
	assert.False(t, noneExact.Matches(target))
}

func TestConditionMissingPropertyFails(t *testing.T) {
	pred := Build(properties.AddStringProperty(nil, "owner", "alice"), MatchAll)
	assert.False(t, pred.Matches(sampleBag()))
}

func TestIntValuesCompareByEquality(t *testing.T) {
	pred := Build(properties.AddIntProperty(nil, "replicas", 4), MatchAll)
	assert.False(t, pred.Matches(sampleBag()))
}

func TestMatchesValueScansStringPrimitives(t *testing.T) {
	target := sampleBag()
	assert.True(t, MatchesValue(target, "payments"))
	assert.True(t, MatchesValue(target, "eu-"))
	assert.False(t, MatchesValue(target, "3"), "int primitives are not searched as text")
	assert.False(t, MatchesValue(target, "absent"))
	assert.False(t, MatchesValue(nil, "anything"))
}
