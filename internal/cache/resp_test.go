// internal/cache/resp_test.go
package cache

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRESP_SimpleString(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader("+OK\r\n")))
	require.NoError(t, err)
	assert.Equal(t, respSimpleString, v.kind)
	assert.Equal(t, "OK", v.str)
}

func TestReadRESP_Error(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader("-ERR wrong kind\r\n")))
	require.NoError(t, err)
	assert.Equal(t, respError, v.kind)
	assert.Equal(t, "ERR wrong kind", v.str)
}

func TestReadRESP_Integer(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader(":1\r\n")))
	require.NoError(t, err)
	assert.Equal(t, respInteger, v.kind)
	assert.EqualValues(t, 1, v.num)
}

func TestReadRESP_BulkString(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader("$5\r\nhello\r\n")))
	require.NoError(t, err)
	assert.Equal(t, respBulkString, v.kind)
	assert.Equal(t, "hello", v.str)
}

func TestReadRESP_NilBulkString(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader("$-1\r\n")))
	require.NoError(t, err)
	assert.Equal(t, respNil, v.kind)
}

func TestReadRESP_Array(t *testing.T) {
	v, err := readRESP(bufio.NewReader(strings.NewReader("*2\r\n$3\r\nfoo\r\n:7\r\n")))
	require.NoError(t, err)
	require.Equal(t, respArray, v.kind)
	require.Len(t, v.items, 2)
	assert.Equal(t, "foo", v.items[0].str)
	assert.EqualValues(t, 7, v.items[1].num)
}
