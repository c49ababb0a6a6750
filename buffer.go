package linekeeper

import "sync"

// A LineBuffer accumulates lines and hands them downstream once threshold lines are pending.
// A threshold of 0 or 1 disables buffering and forwards every line immediately.
//
// A LineBuffer is not safe for concurrent use, see [SafeLineBuffer].
// Call [LineBuffer.Close] when done so pending lines are not lost.
type LineBuffer struct {
	threshold int
	pending   []string

	batches BatchWriter
	lines   LineSink
}

// NewLineBuffer returns a [LineBuffer] flushing whole batches to sink.
func NewLineBuffer(threshold int, sink BatchWriter) *LineBuffer {
	return &LineBuffer{
		threshold: threshold,
		pending:   make([]string, 0, max(threshold, 0)),
		batches:   sink,
	}
}

// NewLineBufferTo returns a [LineBuffer] flushing one line at a time to sink.
func NewLineBufferTo(threshold int, sink LineSink) *LineBuffer {
	return &LineBuffer{
		threshold: threshold,
		pending:   make([]string, 0, max(threshold, 0)),
		lines:     sink,
	}
}

// Write appends line and flushes once the threshold is reached.
func (b *LineBuffer) Write(line string) error {
	if b.threshold <= 1 {
		return b.forward([]string{line})
	}
	b.pending = append(b.pending, line)
	if len(b.pending) >= b.threshold {
		return b.Emit()
	}
	return nil
}

// WriteLine is an alias of [LineBuffer.Write] so buffers can be chained as a [LineSink].
func (b *LineBuffer) WriteLine(line string) error {
	return b.Write(line)
}

// Emit flushes all pending lines regardless of the threshold.
// Pending lines are handed over even if the sink fails, they are never retried.
func (b *LineBuffer) Emit() error {
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = make([]string, 0, b.threshold)
	return b.forward(batch)
}

// Close flushes pending lines.
func (b *LineBuffer) Close() error {
	return b.Emit()
}

// Pending returns the number of buffered lines.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

// Threshold returns the configured flush threshold.
func (b *LineBuffer) Threshold() int {
	return b.threshold
}

func (b *LineBuffer) forward(batch []string) error {
	if b.batches != nil {
		return b.batches.WriteBatch(batch)
	}
	for _, line := range batch {
		if err := b.lines.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// A SafeLineBuffer serializes every write and flush of a [LineBuffer] behind one mutex.
// A threshold flush runs inside the critical section of the write that triggered it.
type SafeLineBuffer struct {
	mu  sync.Mutex
	buf *LineBuffer
}

var _ LineSink = (*SafeLineBuffer)(nil)

// NewSafeLineBuffer takes ownership of buf.
func NewSafeLineBuffer(buf *LineBuffer) *SafeLineBuffer {
	return &SafeLineBuffer{buf: buf}
}

// Write appends line, see [LineBuffer.Write].
func (s *SafeLineBuffer) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(line)
}

// WriteLine is an alias of [SafeLineBuffer.Write] so buffers can be chained as a [LineSink].
func (s *SafeLineBuffer) WriteLine(line string) error {
	return s.Write(line)
}

// Emit flushes pending lines, see [LineBuffer.Emit].
func (s *SafeLineBuffer) Emit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Emit()
}

// Close flushes pending lines.
func (s *SafeLineBuffer) Close() error {
	return s.Emit()
}

// Pending returns the number of buffered lines.
func (s *SafeLineBuffer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Pending()
}
