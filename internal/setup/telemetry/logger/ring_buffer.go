package logger

import "slices"

// RingBuffer keeps the newest lines written to a log file.
type RingBuffer struct {
	lines []string
	next  int
	full  bool
}

// NewRingBuffer creates a ring buffer holding at least one line.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{lines: make([]string, max(capacity, 1))}
}

// Push stores line, overwriting the oldest line once the buffer is full.
func (rb *RingBuffer) Push(line string) {
	rb.lines[rb.next] = line

	rb.next++
	if rb.next == len(rb.lines) {
		rb.next = 0
		rb.full = true
	}
}

// Len returns the number of lines held.
func (rb *RingBuffer) Len() int {
	if rb.full {
		return len(rb.lines)
	}

	return rb.next
}

// Lines returns the held lines oldest first.
func (rb *RingBuffer) Lines() []string {
	if !rb.full {
		return slices.Clone(rb.lines[:rb.next])
	}

	return slices.Concat(rb.lines[rb.next:], rb.lines[:rb.next])
}
