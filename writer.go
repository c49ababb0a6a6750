package linekeeper

import (
	"fmt"
	"io"
)

// A SegmentWriter writes every batch to one segment of a [BatchSink].
type SegmentWriter struct {
	sink BatchSink
}

var _ BatchWriter = (*SegmentWriter)(nil)

// NewSegmentWriter returns a [SegmentWriter] over sink.
func NewSegmentWriter(sink BatchSink) *SegmentWriter {
	return &SegmentWriter{sink: sink}
}

// WriteBatch begins a segment, writes lines in order and commits.
// If a line fails, the commit is skipped and the sink stays open.
func (w *SegmentWriter) WriteBatch(lines []string) error {
	if err := w.sink.Begin(); err != nil {
		return err
	}
	for i, line := range lines {
		if err := w.sink.WriteLine(line); err != nil {
			return fmt.Errorf("failed to write line %d of %d, caused by %w", i+1, len(lines), err)
		}
	}
	return w.sink.Commit()
}

// Sink returns the underlying [BatchSink].
func (w *SegmentWriter) Sink() BatchSink {
	return w.sink
}

// A StreamWriter writes newline-terminated lines to an [io.Writer].
type StreamWriter struct {
	w io.Writer
}

var (
	_ LineSink    = (*StreamWriter)(nil)
	_ BatchWriter = (*StreamWriter)(nil)
)

// NewStreamWriter returns a [StreamWriter] over w. A non-empty header is written to w first, as is.
func NewStreamWriter(w io.Writer, header string) (*StreamWriter, error) {
	if len(header) > 0 {
		if _, err := io.WriteString(w, header); err != nil {
			return nil, fmt.Errorf("failed to write header, caused by %w", err)
		}
	}
	return &StreamWriter{w: w}, nil
}

// WriteLine writes line followed by a newline.
func (s *StreamWriter) WriteLine(line string) error {
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// WriteBatch writes every line in order.
func (s *StreamWriter) WriteBatch(lines []string) error {
	for _, line := range lines {
		if err := s.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}
