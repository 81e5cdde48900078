package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	assert.Equal(t, "fallback", String("FIXTUREGRID_TEST_UNSET", "fallback"))

	t.Setenv("FIXTUREGRID_TEST_STRING", "")
	assert.Equal(t, "", String("FIXTUREGRID_TEST_STRING", "fallback"), "set but empty wins over the default")
}

func TestTypedValues(t *testing.T) {
	t.Setenv("FIXTUREGRID_TEST_DURATION", "1500ms")
	t.Setenv("FIXTUREGRID_TEST_BOOL", "true")
	t.Setenv("FIXTUREGRID_TEST_INT", "4")

	d, err := Duration("FIXTUREGRID_TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	b, err := Bool("FIXTUREGRID_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	i, err := Int("FIXTUREGRID_TEST_INT", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, i)

	i, err = Int("FIXTUREGRID_TEST_UNSET", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, i)
}

func TestParseErrors(t *testing.T) {
	t.Setenv("FIXTUREGRID_TEST_BAD", "not-a-value")

	_, err := Duration("FIXTUREGRID_TEST_BAD", 0)
	assert.ErrorContains(t, err, "parse FIXTUREGRID_TEST_BAD")

	_, err = Bool("FIXTUREGRID_TEST_BAD", false)
	assert.Error(t, err)

	_, err = Int("FIXTUREGRID_TEST_BAD", 0)
	assert.Error(t, err)
}
