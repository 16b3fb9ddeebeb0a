package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool_GetReturnsEmptyBuffer(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get()
	buf.WriteString("leftover")
	bp.Put(buf)

	again := bp.Get()
	assert.Equal(t, 0, again.Len())
}

func TestBufferPool_DropsOversizedBuffers(t *testing.T) {
	bp := NewBufferPool()

	big := bytes.NewBuffer(make([]byte, 0, MaxPooledBufferSize+1))
	bp.Put(big)
	bp.Put(nil)

	buf := bp.Get()
	require.NotNil(t, buf)
	assert.LessOrEqual(t, buf.Cap(), MaxPooledBufferSize)
}

func TestBufferPool_CopyBuffer(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.GetCopyBuffer()
	require.NotNil(t, buf)
	assert.Len(t, *buf, CopyBufferSize)

	*buf = (*buf)[:10]
	bp.PutCopyBuffer(buf)

	again := bp.GetCopyBuffer()
	assert.Len(t, *again, CopyBufferSize)

	short := make([]byte, 16)
	bp.PutCopyBuffer(&short)
	bp.PutCopyBuffer(nil)
}

func TestGlobalPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("x")
	PutBuffer(buf)

	cb := GetCopyBuffer()
	assert.Len(t, *cb, CopyBufferSize)
	PutCopyBuffer(cb)
}
