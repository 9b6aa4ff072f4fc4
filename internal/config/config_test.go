package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_BareEnvironmentIsUsable(t *testing.T) {
	t.Setenv("DEFAULT_ORG", "")
	t.Setenv("SEED_DEMO_DATA", "")

	cfg := Load()

	// Demo seeding is on out of the box, so the default org must point at
	// the org the seed creates.
	assert.Equal(t, int64(1), cfg.DefaultOrgID)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoad_DefaultOrgOverride(t *testing.T) {
	t.Setenv("DEFAULT_ORG", "9")

	cfg := Load()
	assert.Equal(t, int64(9), cfg.DefaultOrgID)
}
