//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxPooledBuffers caps how many idle buffers the pool retains.
const maxPooledBuffers = 32

// pooledBuffer wraps a GPU buffer with the metadata needed for reuse.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses staging buffers between dispatches. Mapping a fresh
// buffer for every readback dominates small-kernel latency, so readbacks
// go through pooled MAP_READ buffers instead.
type BufferPool struct {
	device *wgpu.Device

	idle []*pooledBuffer
	mu   sync.Mutex

	hits   uint64
	misses uint64
}

// NewBufferPool creates a buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		idle:   make([]*pooledBuffer, 0, maxPooledBuffers),
	}
}

// Acquire returns a pooled buffer of at least the requested size with the
// requested usage, or creates a new one.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pb := range p.idle {
		if pb.size >= size && pb.usage&usage == usage {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			p.hits++
			return pb.buffer
		}
	}

	p.misses++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool. When the pool is full the buffer
// is released to the GPU immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) >= maxPooledBuffers {
		buffer.Release()
		return
	}
	p.idle = append(p.idle, &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers. Called when the backend shuts down.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pb := range p.idle {
		pb.buffer.Release()
	}
	p.idle = p.idle[:0]
}

// Stats reports pool hit and miss counts and the current idle size.
func (p *BufferPool) Stats() (hits, misses uint64, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses, len(p.idle)
}
