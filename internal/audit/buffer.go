package audit

import "sync"

// Buffer is a bounded queue between the audit log and the sink worker.
// When full, the oldest envelope is dropped.
type Buffer struct {
	mu       sync.Mutex
	items    []Envelope
	head     int
	tail     int
	count    int
	capacity int
	dropped  int64
	ready    chan struct{}
}

// NewBuffer creates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Buffer{
		items:    make([]Envelope, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Enqueue adds an envelope and wakes the worker.
func (b *Buffer) Enqueue(env Envelope) {
	b.mu.Lock()
	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}
	b.items[b.head] = env
	b.head = (b.head + 1) % b.capacity
	b.count++
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// DequeueBatch removes up to n envelopes, oldest first.
func (b *Buffer) DequeueBatch(n int) []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	n = min(n, b.count)
	out := make([]Envelope, n)
	for i := range n {
		out[i] = b.items[b.tail]
		b.items[b.tail] = Envelope{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return out
}

// Ready fires after Enqueue.
func (b *Buffer) Ready() <-chan struct{} {
	return b.ready
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Buffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
