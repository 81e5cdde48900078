package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/config"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

func TestModule_Disabled(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterModules(&Module{}))
	assert.Zero(t, reg.Len())
}

func TestModule_Enabled(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterModules(&Module{Enabled: true, Headless: true}))
	require.NoError(t, reg.Validate(context.Background()))

	b, ok := reg.Lookup(BrowserFixture)
	require.True(t, ok)
	assert.Equal(t, fixture.ScopeRun, b.Scope)

	p, ok := reg.Lookup(PageFixture)
	require.True(t, ok)
	assert.Equal(t, fixture.ScopeTest, p.Scope)
	assert.Equal(t, []string{BrowserFixture}, p.DependsOn)
	assert.Equal(t, []string{BrowserFixture, PageFixture}, reg.Order())

	ctx := context.Background()
	assert.ErrorContains(t, b.Teardown(ctx, "x"), "unexpected")
	assert.ErrorContains(t, p.Teardown(ctx, "x"), "unexpected")

	_, err := p.Setup(ctx, fixture.Deps{BrowserFixture: "not a browser"})
	assert.Error(t, err)
}

func TestModule_Arguments(t *testing.T) {
	model, err := config.Parse("suite.hcl", []byte("fixture \"browser\" {\n  headless = true\n}\n"))
	require.NoError(t, err)

	reg := registry.New()
	reg.SetArguments(model)
	assert.ErrorContains(t, reg.RegisterModules(&Module{Enabled: true}), `unsupported argument "headless"`)
}
