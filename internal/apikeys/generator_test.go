// internal/apikeys/generator_test.go
package apikeys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator()

	token1, err := gen.Generate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token1, tokenPrefix))

	token2, err := gen.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)
}
