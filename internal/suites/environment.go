package suites

import (
	"github.com/stretchr/testify/assert"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/modules/env_vars"
)

// Environment checks the run-wide environment snapshot.
func Environment() harness.Suite {
	return harness.Suite{
		{Name: "env/snapshot", Uses: []string{env_vars.FixtureName}, Fn: func(t *harness.T) {
			snap := harness.Get[env_vars.Snapshot](t, env_vars.FixtureName)
			assert.Equal(t, "fallback", snap.Get("FIXTUREGRID_SURELY_UNSET_VARIABLE", "fallback"))
		}},
	}
}
