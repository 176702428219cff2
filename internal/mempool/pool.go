// Package mempool provides size-classed pools for render output buffers and
// raster pixel slices.
package mempool

import (
	"bytes"
	"sync"
)

var (
	bufferPools sync.Map // key: size class (int), value: *sync.Pool of *bytes.Buffer
	bytePools   sync.Map // key: size class (int), value: *sync.Pool of []byte
)

// maxPooledBuffer bounds the capacity of buffers kept for reuse.
const maxPooledBuffer = 64 << 20

// sizeClass rounds n up to a multiple of 4 KiB, with a 4 KiB minimum.
func sizeClass(n int) int {
	const step = 4096
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func poolFor(m *sync.Map, cls int, newFn func() any) *sync.Pool {
	pAny, _ := m.LoadOrStore(cls, &sync.Pool{New: newFn})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return &sync.Pool{New: newFn}
	}
	return p
}

// GetBuffer returns an empty buffer with capacity for at least sizeHint
// bytes. Return it with PutBuffer.
func GetBuffer(sizeHint int) *bytes.Buffer {
	cls := sizeClass(sizeHint)
	p := poolFor(&bufferPools, cls, func() any { return bytes.NewBuffer(make([]byte, 0, cls)) })
	buf, ok := p.Get().(*bytes.Buffer)
	if !ok {
		buf = bytes.NewBuffer(make([]byte, 0, cls))
	}
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to its pool. It is safe to pass nil.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	// Buffers are filed by their current capacity rounded down so a Get never
	// receives a smaller buffer than its class promises.
	cls := sizeClass(buf.Cap())
	if cls > buf.Cap() {
		cls -= 4096
	}
	if cls <= 0 {
		return
	}
	buf.Reset()
	poolFor(&bufferPools, cls, func() any { return bytes.NewBuffer(make([]byte, 0, cls)) }).Put(buf)
}

// GetBytes returns a zeroed slice of length n. Return it with PutBytes.
func GetBytes(n int) []byte {
	if n < 0 {
		n = 0
	}
	cls := sizeClass(n)
	p := poolFor(&bytePools, cls, func() any { return make([]byte, cls) })
	buf, ok := p.Get().([]byte)
	if !ok || cap(buf) < cls {
		buf = make([]byte, cls)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// PutBytes returns a slice to its pool. It is safe to pass nil.
func PutBytes(buf []byte) {
	if buf == nil || cap(buf) > maxPooledBuffer {
		return
	}
	cls := sizeClass(cap(buf))
	if cls > cap(buf) {
		return
	}
	poolFor(&bytePools, cls, func() any { return make([]byte, cls) }).Put(buf[:cap(buf)]) //nolint:staticcheck
}
