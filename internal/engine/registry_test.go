package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Record("alice", "a1")
	r.Record("alice", "a2")
	r.Record("alice", "a1")
	r.Record("bob", "b1")

	assert.Equal(t, []string{"a1", "a2"}, r.Orders("alice"))
	assert.Empty(t, r.Orders("nobody"))
	assert.True(t, r.Owns("alice", "a2"))
	assert.False(t, r.Owns("bob", "a2"))

	assert.Equal(t, []string{"alice", "bob"}, r.Stakeholders([]string{"alice", "bob"}, "a1", "b1"))
	assert.Equal(t, []string{"alice"}, r.Stakeholders([]string{"alice", "alice"}, "a1"))
	assert.Empty(t, r.Stakeholders([]string{"carol"}, "a1", "b1"))

	// Callers cannot reach into the registry through the returned slice.
	ids := r.Orders("alice")
	ids[0] = "changed"
	assert.Equal(t, "a1", r.Orders("alice")[0])
}
