// internal/common/permissions_test.go
package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberPermissions_BitPositions(t *testing.T) {
	cases := map[string]uint64{
		"member:invite":   1 << 0,
		"member:update":   1 << 1,
		"member:kick":     1 << 2,
		"metadata:update": 1 << 3,
		"repo:create":     1 << 4,
		"repo:delete":     1 << 5,
		"webhooks:create": 1 << 6,
		"webhooks:update": 1 << 7,
		"webhooks:delete": 1 << 8,
		"metadata:delete": 1 << 9,
	}

	for name, bit := range cases {
		mp := NewMemberPermissions(0)
		require.NoError(t, mp.Add(name))
		assert.Equal(t, bit, mp.Bits())
	}
}

func TestApiKeyScope_HasAll(t *testing.T) {
	granted := NewApiKeyScope(0)
	require.NoError(t, granted.Add("repo:access"))
	require.NoError(t, granted.Add("release:upload"))

	required := NewApiKeyScope(0)
	require.NoError(t, required.Add("repo:access"))
	assert.True(t, granted.HasAll(required))

	require.NoError(t, required.Add("org:create"))
	assert.False(t, granted.HasAll(required))
}
