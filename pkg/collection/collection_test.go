package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"metarepo/pkg/instance"
)

func TestAdmitsStatusDefaultExcludesDeleted(t *testing.T) {
	var page PageRequest

	assert.True(t, page.AdmitsStatus(instance.StatusActive))
	assert.True(t, page.AdmitsStatus(instance.StatusDraft))
	assert.True(t, page.AdmitsStatus(instance.StatusProposed))
	assert.False(t, page.AdmitsStatus(instance.StatusDeleted))
}

func TestAdmitsStatusExplicitFilter(t *testing.T) {
	page := PageRequest{StatusFilter: []instance.Status{instance.StatusDeleted, instance.StatusDraft}}

	assert.True(t, page.AdmitsStatus(instance.StatusDeleted), "deleted surfaces when asked for")
	assert.True(t, page.AdmitsStatus(instance.StatusDraft))
	assert.False(t, page.AdmitsStatus(instance.StatusActive))
}
