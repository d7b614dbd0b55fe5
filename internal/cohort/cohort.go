// Package cohort tracks the federation state of this repository: the
// cohorts it has joined, its own registration in each, and the
// registrations of remote members. The view is purely local; exchanging
// registrations over a transport is another component's job.
package cohort

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"metarepo/internal/logging"
	"metarepo/pkg/ferr"
)

// ConnectionStatus describes this server's relation to one cohort.
type ConnectionStatus string

// Connection statuses.
const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// Registration is one member's record in a cohort.
type Registration struct {
	ServerName             string    `json:"server_name"`
	Organization           string    `json:"organization,omitempty"`
	MetadataCollectionID   string    `json:"metadata_collection_id"`
	MetadataCollectionName string    `json:"metadata_collection_name,omitempty"`
	RegistrationTime       time.Time `json:"registration_time"`
}

// Description is the externally visible state of one joined cohort.
type Description struct {
	CohortName          string           `json:"cohort_name"`
	ConnectionStatus    ConnectionStatus `json:"connection_status"`
	LocalRegistration   Registration     `json:"local_registration"`
	RemoteRegistrations []Registration   `json:"remote_registrations,omitempty"`
}

type member struct {
	status  ConnectionStatus
	local   Registration
	remotes map[string]Registration
}

// Manager is the cohort membership provider. A nil Manager behaves as a
// repository with federation disabled: every call fails with the
// federation-not-configured fault.
type Manager struct {
	mu      sync.RWMutex
	local   Registration
	cohorts map[string]*member
	nowFn   func() time.Time
	logger  zerolog.Logger
}

// NewManager builds a membership view for a server identified by its
// local registration record.
func NewManager(local Registration) *Manager {
	return &Manager{
		local:   local,
		cohorts: make(map[string]*member),
		nowFn:   func() time.Time { return time.Now().UTC() },
		logger:  logging.GetLogger("cohort"),
	}
}

func (m *Manager) guard(operation string) error {
	if m == nil {
		return ferr.New(ferr.FederationNotConfigured).WithProperty("operation", operation)
	}
	return nil
}

// Cohorts lists every joined cohort, sorted by name.
func (m *Manager) Cohorts() ([]Description, error) {
	if err := m.guard("getCohorts"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Description, 0, len(m.cohorts))
	for name := range m.cohorts {
		out = append(out, m.describeLocked(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CohortName < out[j].CohortName })
	return out, nil
}

// Cohort returns the state of one joined cohort.
func (m *Manager) Cohort(name string) (Description, error) {
	if err := m.guard("getCohort"); err != nil {
		return Description{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.cohorts[name]; !ok {
		return Description{}, ferr.New(ferr.NullParameter, "cohortName", "getCohort", m.local.ServerName)
	}
	return m.describeLocked(name), nil
}

func (m *Manager) describeLocked(name string) Description {
	c := m.cohorts[name]
	desc := Description{
		CohortName:        name,
		ConnectionStatus:  c.status,
		LocalRegistration: c.local,
	}
	for _, reg := range c.remotes {
		desc.RemoteRegistrations = append(desc.RemoteRegistrations, reg)
	}
	sort.Slice(desc.RemoteRegistrations, func(i, j int) bool {
		return desc.RemoteRegistrations[i].ServerName < desc.RemoteRegistrations[j].ServerName
	})
	return desc
}

// ConnectToCohort joins a cohort by name, or reconnects to one previously
// disconnected. The local registration is stamped at connect time.
func (m *Manager) ConnectToCohort(name string) (Description, error) {
	if err := m.guard("connectToCohort"); err != nil {
		return Description{}, err
	}
	if name == "" {
		return Description{}, ferr.New(ferr.NullParameter, "cohortName", "connectToCohort", m.local.ServerName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cohorts[name]
	if !ok {
		local := m.local
		local.RegistrationTime = m.nowFn()
		c = &member{local: local, remotes: make(map[string]Registration)}
		m.cohorts[name] = c
	}
	c.status = StatusConnected
	m.logger.Info().Str("cohort", name).Msg("connected to cohort")
	return m.describeLocked(name), nil
}

// DisconnectFromCohort leaves a cohort by name. With permanent set, the
// membership record is dropped entirely; otherwise the registration is
// kept so a later connect resumes with the same identity.
func (m *Manager) DisconnectFromCohort(name string, permanent bool) error {
	if err := m.guard("disconnectFromCohort"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cohorts[name]
	if !ok {
		return ferr.New(ferr.NullParameter, "cohortName", "disconnectFromCohort", m.local.ServerName)
	}
	if permanent {
		delete(m.cohorts, name)
	} else {
		c.status = StatusDisconnected
	}
	m.logger.Info().Str("cohort", name).Bool("permanent", permanent).Msg("disconnected from cohort")
	return nil
}

// RegisterRemoteMember records (or refreshes) a remote member's
// registration in a joined cohort.
func (m *Manager) RegisterRemoteMember(cohortName string, reg Registration) error {
	if err := m.guard("registerRemoteMember"); err != nil {
		return err
	}
	if reg.MetadataCollectionID == "" {
		return ferr.New(ferr.NullParameter, "metadataCollectionId", "registerRemoteMember", m.local.ServerName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cohorts[cohortName]
	if !ok {
		return ferr.New(ferr.NullParameter, "cohortName", "registerRemoteMember", m.local.ServerName)
	}
	if reg.RegistrationTime.IsZero() {
		reg.RegistrationTime = m.nowFn()
	}
	c.remotes[reg.MetadataCollectionID] = reg
	return nil
}

// UnregisterRemoteMember drops a remote member's registration.
func (m *Manager) UnregisterRemoteMember(cohortName, metadataCollectionID string) error {
	if err := m.guard("unregisterRemoteMember"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cohorts[cohortName]
	if !ok {
		return ferr.New(ferr.NullParameter, "cohortName", "unregisterRemoteMember", m.local.ServerName)
	}
	delete(c.remotes, metadataCollectionID)
	return nil
}

// CollectionKnown reports whether a metadata collection id belongs to a
// registered member of any connected cohort, and the cohort it was found
// in. The reference-copy operations use this to flag copies arriving from
// collections this repository has never seen register.
func (m *Manager) CollectionKnown(metadataCollectionID string) (string, bool) {
	if m == nil || metadataCollectionID == "" {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, c := range m.cohorts {
		if c.status != StatusConnected {
			continue
		}
		if c.local.MetadataCollectionID == metadataCollectionID {
			return name, true
		}
		if _, ok := c.remotes[metadataCollectionID]; ok {
			return name, true
		}
	}
	return "", false
}
