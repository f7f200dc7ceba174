package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreflight_BinaryFound(t *testing.T) {
	// sh is present on every platform the tool runs on.
	status := Preflight("sh")
	assert.True(t, status.IsHealthy())
	assert.Contains(t, status.Message, "sh")
}

func TestPreflight_BinaryMissing(t *testing.T) {
	status := Preflight("nexus-nonexistent-runtime-xyz")
	assert.True(t, status.IsUnhealthy())
	assert.Contains(t, status.Message, "not found in PATH")
	assert.Equal(t, "nexus-nonexistent-runtime-xyz", status.Details["binary"])
}

func TestPreflight_EmptyName(t *testing.T) {
	status := Preflight("")
	assert.True(t, status.IsUnhealthy())
}
