package fixture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/retry"
)

func noopSetup(context.Context, Deps) (any, error) { return nil, nil }

func TestDefinition_Validate(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		def := &Definition{Name: "db", Scope: ScopeRun, Setup: noopSetup, DependsOn: []string{"config"}}
		assert.NoError(t, def.Validate())
	})

	cases := map[string]struct {
		def  *Definition
		want string
	}{
		"nil":          {nil, "nil"},
		"empty name":   {&Definition{Setup: noopSetup}, "empty name"},
		"no setup":     {&Definition{Name: "db"}, "no setup"},
		"bad scope":    {&Definition{Name: "db", Scope: Scope(7), Setup: noopSetup}, "invalid scope"},
		"bad retry":    {&Definition{Name: "db", Setup: noopSetup, Retry: &retry.Policy{}}, "invalid retry policy"},
		"dup dep name": {&Definition{Name: "db", Setup: noopSetup, DependsOn: []string{"a", "a"}}, "more than once"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorContains(t, tc.def.Validate(), tc.want)
		})
	}
}

func TestGet(t *testing.T) {
	deps := Deps{"port": 8080}

	port, err := Get[int](deps, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = Get[string](deps, "port")
	assert.ErrorContains(t, err, "has type int")

	_, err = Get[int](deps, "missing")
	assert.ErrorContains(t, err, "was not resolved")
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")

	assert.ErrorIs(t, &SetupFailedError{Name: "db", Err: cause}, cause)
	assert.ErrorIs(t, &TeardownError{Name: "db", Scope: ScopeRun, Err: cause}, cause)
	assert.EqualError(t, &CyclicDependencyError{Cycle: []string{"a", "b", "a"}}, "cyclic fixture dependency: a -> b -> a")
	assert.EqualError(t, &InvalidScopeNestingError{Fixture: "pool", Dependency: "page"},
		`run-scoped fixture "pool" cannot depend on test-scoped fixture "page"`)
	assert.EqualError(t, &UnknownFixtureError{Name: "x", Referrer: "y"}, `unknown fixture "x" referenced by "y"`)
}
