// Package ring is the byte queue between a stream reader goroutine and the
// polling control loop.
//
// There is exactly one writer and one reader. The writer blocks when the
// queue is full; the reader never blocks. Positions are free-running uint32
// counts of bytes written and read, so only their difference matters.
package ring

import "sync/atomic"

type Ring struct {
	buf  []byte
	mask uint32

	read    atomic.Uint32 // bytes consumed so far
	written atomic.Uint32 // bytes produced so far

	waiting atomic.Bool   // writer is parked on room
	room    chan struct{} // wakes a parked writer
}

// New allocates a ring. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{
		buf:  make([]byte, size),
		mask: uint32(size - 1),
		room: make(chan struct{}, 1),
	}
}

// WriteAll queues every byte of p, waiting for the reader whenever the ring
// is full. It returns false if stop closes first; bytes queued before that
// stay queued. Writer side only.
func (r *Ring) WriteAll(p []byte, stop <-chan struct{}) bool {
	for len(p) > 0 {
		if n := r.put(p); n > 0 {
			p = p[n:]
			continue
		}
		// Publish the wait before re-checking, so a Read that frees space
		// after the check is guaranteed to see it.
		r.waiting.Store(true)
		if r.free() > 0 {
			r.waiting.Store(false)
			continue
		}
		select {
		case <-r.room:
		case <-stop:
			r.waiting.Store(false)
			return false
		}
	}
	return true
}

// Read copies up to len(p) queued bytes into p without blocking. Reader side
// only.
func (r *Ring) Read(p []byte) int {
	w := r.written.Load()
	at := r.read.Load()
	n := min(len(p), int(w-at))
	if n <= 0 {
		return 0
	}
	i := at & r.mask
	c := copy(p[:n], r.buf[i:])
	copy(p[c:n], r.buf)
	r.read.Store(at + uint32(n))

	if r.waiting.CompareAndSwap(true, false) {
		select {
		case r.room <- struct{}{}:
		default:
		}
	}
	return n
}

func (r *Ring) free() int {
	return len(r.buf) - int(r.written.Load()-r.read.Load())
}

func (r *Ring) put(p []byte) int {
	n := min(len(p), r.free())
	if n == 0 {
		return 0
	}
	at := r.written.Load()
	i := at & r.mask
	c := copy(r.buf[i:], p[:n])
	copy(r.buf, p[c:n])
	r.written.Store(at + uint32(n))
	return n
}
