package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/pkg/ferr"
)

func localRegistration() Registration {
	return Registration{
		ServerName:             "metarepo-test",
		Organization:           "example",
		MetadataCollectionID:   "collection-local",
		MetadataCollectionName: "Local Collection",
	}
}

func TestNilManagerReportsFederationNotConfigured(t *testing.T) {
	var m *Manager

	_, err := m.Cohorts()
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindRepositoryError, kind)

	_, err = m.ConnectToCohort("production")
	assert.Error(t, err)
	assert.Error(t, m.DisconnectFromCohort("production", false))
	assert.Error(t, m.RegisterRemoteMember("production", Registration{MetadataCollectionID: "x"}))

	_, known := m.CollectionKnown("collection-local")
	assert.False(t, known)
}

func TestConnectStampsLocalRegistration(t *testing.T) {
	m := NewManager(localRegistration())
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.nowFn = func() time.Time { return stamp }

	desc, err := m.ConnectToCohort("production")
	require.NoError(t, err)
	assert.Equal(t, "production", desc.CohortName)
	assert.Equal(t, StatusConnected, desc.ConnectionStatus)
	assert.Equal(t, "collection-local", desc.LocalRegistration.MetadataCollectionID)
	assert.Equal(t, stamp, desc.LocalRegistration.RegistrationTime)

	_, err = m.ConnectToCohort("")
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindInvalidInput, kind)
}

func TestCohortsSortedByName(t *testing.T) {
	m := NewManager(localRegistration())
	for _, name := range []string{"production", "development", "staging"} {
		_, err := m.ConnectToCohort(name)
		require.NoError(t, err)
	}

	all, err := m.Cohorts()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "development", all[0].CohortName)
	assert.Equal(t, "production", all[1].CohortName)
	assert.Equal(t, "staging", all[2].CohortName)
}

func TestDisconnectKeepsRegistrationUnlessPermanent(t *testing.T) {
	m := NewManager(localRegistration())
	first, err := m.ConnectToCohort("production")
	require.NoError(t, err)

	require.NoError(t, m.DisconnectFromCohort("production", false))
	desc, err := m.Cohort("production")
	require.NoError(t, err)
	assert.Equal(t, StatusDisconnected, desc.ConnectionStatus)

	resumed, err := m.ConnectToCohort("production")
	require.NoError(t, err)
	assert.Equal(t, first.LocalRegistration.RegistrationTime, resumed.LocalRegistration.RegistrationTime,
		"reconnect resumes the original registration")

	require.NoError(t, m.DisconnectFromCohort("production", true))
	_, err = m.Cohort("production")
	assert.Error(t, err)

	assert.Error(t, m.DisconnectFromCohort("never-joined", false))
}

func TestRemoteMemberRegistration(t *testing.T) {
	m := NewManager(localRegistration())
	_, err := m.ConnectToCohort("production")
	require.NoError(t, err)

	remote := Registration{
		ServerName:           "remote-1",
		MetadataCollectionID: "collection-remote",
	}
	require.NoError(t, m.RegisterRemoteMember("production", remote))

	desc, err := m.Cohort("production")
	require.NoError(t, err)
	require.Len(t, desc.RemoteRegistrations, 1)
	assert.Equal(t, "remote-1", desc.RemoteRegistrations[0].ServerName)
	assert.False(t, desc.RemoteRegistrations[0].RegistrationTime.IsZero())

	assert.Error(t, m.RegisterRemoteMember("production", Registration{}),
		"a registration without a collection id is rejected")
	assert.Error(t, m.RegisterRemoteMember("never-joined", remote))

	require.NoError(t, m.UnregisterRemoteMember("production", "collection-remote"))
	desc, err = m.Cohort("production")
	require.NoError(t, err)
	assert.Empty(t, desc.RemoteRegistrations)
}

func TestCollectionKnownScansConnectedCohortsOnly(t *testing.T) {
	m := NewManager(localRegistration())
	_, err := m.ConnectToCohort("production")
	require.NoError(t, err)
	require.NoError(t, m.RegisterRemoteMember("production", Registration{
		ServerName:           "remote-1",
		MetadataCollectionID: "collection-remote",
	}))

	name, known := m.CollectionKnown("collection-remote")
	assert.True(t, known)
	assert.Equal(t, "production", name)

	name, known = m.CollectionKnown("collection-local")
	assert.True(t, known, "the local collection is a member too")
	assert.Equal(t, "production", name)

	_, known = m.CollectionKnown("collection-unregistered")
	assert.False(t, known)
	_, known = m.CollectionKnown("")
	assert.False(t, known)

	require.NoError(t, m.DisconnectFromCohort("production", false))
	_, known = m.CollectionKnown("collection-remote")
	assert.False(t, known, "disconnected cohorts do not vouch for members")
}
