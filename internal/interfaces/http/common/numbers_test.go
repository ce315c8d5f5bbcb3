package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalPositiveFloat(t *testing.T) {
	v, err := ParseOptionalPositiveFloat("  ")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseOptionalPositiveFloat(" 2.5 ")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2.5, *v)

	for _, bad := range []string{"abc", "0", "-1", "NaN", "Inf"} {
		_, err := ParseOptionalPositiveFloat(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true", false))
	assert.True(t, ParseBool("ON", false))
	assert.False(t, ParseBool("0", true))
	assert.True(t, ParseBool("", true))
	assert.False(t, ParseBool("maybe", false))
}
