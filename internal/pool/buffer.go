package pool

import (
	"bytes"
	"sync"
)

const (
	// CopyBufferSize is the size of the slices handed out by GetCopyBuffer (64KB)
	CopyBufferSize = 64 * 1024

	// MaxPooledBufferSize bounds the capacity of buffers returned to the pool (8MB).
	// Larger buffers are dropped so one big upload does not pin its memory.
	MaxPooledBufferSize = 8 * 1024 * 1024
)

// BufferPool manages reusable upload buffers and copy slices.
type BufferPool struct {
	buffers *sync.Pool
	copies  *sync.Pool
}

// NewBufferPool creates a new, empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		buffers: &sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
		copies: &sync.Pool{
			New: func() any {
				buf := make([]byte, CopyBufferSize)
				return &buf
			},
		},
	}
}

// Get returns an empty buffer from the pool.
// The caller is responsible for calling Put once the contents are no longer referenced.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns a buffer to the pool. Oversized buffers are discarded.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > MaxPooledBufferSize {
		return
	}
	buf.Reset()
	bp.buffers.Put(buf)
}

// GetCopyBuffer returns a CopyBufferSize slice for io.CopyBuffer.
func (bp *BufferPool) GetCopyBuffer() *[]byte {
	return bp.copies.Get().(*[]byte)
}

// PutCopyBuffer returns a slice obtained from GetCopyBuffer.
func (bp *BufferPool) PutCopyBuffer(buf *[]byte) {
	if buf == nil || cap(*buf) != CopyBufferSize {
		return
	}
	*buf = (*buf)[:CopyBufferSize]
	bp.copies.Put(buf)
}

// Global buffer pool instance for use throughout the module.
var globalBufferPool = NewBufferPool()

// GetBuffer returns an empty buffer from the global pool.
func GetBuffer() *bytes.Buffer {
	return globalBufferPool.Get()
}

// PutBuffer returns a buffer to the global pool.
func PutBuffer(buf *bytes.Buffer) {
	globalBufferPool.Put(buf)
}

// GetCopyBuffer returns a copy slice from the global pool.
func GetCopyBuffer() *[]byte {
	return globalBufferPool.GetCopyBuffer()
}

// PutCopyBuffer returns a copy slice to the global pool.
func PutCopyBuffer(buf *[]byte) {
	globalBufferPool.PutCopyBuffer(buf)
}
