package api_client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/composer"
	"github.com/vk/fixturegrid/internal/config"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/modules/http_client"
	"github.com/vk/fixturegrid/modules/mock_server"
)

func compose(t *testing.T, mod *Module, src string) (*composer.Composer, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	if src != "" {
		model, err := config.Parse("suite.hcl", []byte(src))
		require.NoError(t, err)
		reg.SetArguments(model)
	}
	require.NoError(t, reg.RegisterModules(&http_client.Module{}, &mock_server.Module{}, mod))
	require.NoError(t, reg.Validate(context.Background()))

	comp, err := composer.New(reg)
	require.NoError(t, err)
	require.NoError(t, comp.BeginRun(context.Background()))
	t.Cleanup(func() { _ = comp.EndRun(context.Background()) })
	return comp, reg
}

func TestModule_DefaultsToMockServer(t *testing.T) {
	ctx := context.Background()
	comp, _ := compose(t, &Module{}, "")

	ts, err := comp.BeginTest(ctx, "api/mock")
	require.NoError(t, err)

	v, err := comp.Resolve(ctx, ts, FixtureName)
	require.NoError(t, err)
	client := v.(*Client)

	srvValue, ok := comp.Lookup(ts, mock_server.FixtureName)
	require.True(t, ok)
	srv := srvValue.Value.(*mock_server.Server)
	assert.Equal(t, srv.URL(), client.BaseURL())

	srv.HandleStatus(http.MethodGet, "/ping", http.StatusOK)
	resp, err := client.Do(ctx, http.MethodGet, "/ping", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	require.NoError(t, comp.EndTest(ctx, ts))
}

func TestModule_Arguments(t *testing.T) {
	t.Run("base url from module and argument", func(t *testing.T) {
		ctx := context.Background()
		comp, _ := compose(t, &Module{BaseURL: "http://settings.test"}, "")
		ts, err := comp.BeginTest(ctx, "a")
		require.NoError(t, err)
		v, err := comp.Resolve(ctx, ts, FixtureName)
		require.NoError(t, err)
		assert.Equal(t, "http://settings.test", v.(*Client).BaseURL())

		comp, _ = compose(t, &Module{BaseURL: "http://settings.test"}, "fixture \"api\" {\n  base_url = \"http://arg.test/\"\n}\n")
		ts, err = comp.BeginTest(ctx, "b")
		require.NoError(t, err)
		v, err = comp.Resolve(ctx, ts, FixtureName)
		require.NoError(t, err)
		assert.Equal(t, "http://arg.test", v.(*Client).BaseURL())
	})

	t.Run("retry arguments", func(t *testing.T) {
		reg := registry.New()
		model, err := config.Parse("suite.hcl", []byte("fixture \"api\" {\n  retry_attempts = 3\n  retry_interval = \"10ms\"\n}\n"))
		require.NoError(t, err)
		reg.SetArguments(model)
		require.NoError(t, reg.RegisterModules(&Module{}))
	})

	t.Run("invalid retry arguments", func(t *testing.T) {
		reg := registry.New()
		model, err := config.Parse("suite.hcl", []byte("fixture \"api\" {\n  retry_attempts = 0\n}\n"))
		require.NoError(t, err)
		reg.SetArguments(model)
		assert.ErrorContains(t, reg.RegisterModules(&Module{}), "invalid retry policy")
	})
}
