// internal/common/snowflake_test.go
package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Monotonic(t *testing.T) {
	sf, err := NewSnowflake(1)
	require.NoError(t, err)

	var last uint64
	for i := 0; i < 5000; i++ {
		id, err := sf.Generate()
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.Error(t, err)

	_, err = NewSnowflake(maxNodeID + 1)
	assert.Error(t, err)
}

func TestSnowflake_OverflowWithinMillisecond(t *testing.T) {
	sf, err := NewSnowflake(2)
	require.NoError(t, err)

	// pin lastMs to the current millisecond and exhaust the sequence so the
	// next call lands in the same-millisecond branch with no room left.
	sf.lastMs = time.Now().UnixMilli()
	sf.sequence = maxSequence

	_, err = sf.Generate()
	assert.Error(t, err)
}
