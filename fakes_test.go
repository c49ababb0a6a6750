package linekeeper

import (
	"errors"
	"strings"
)

// fakeTransport records what a SegmentSink does to its transport.
type fakeTransport struct {
	lastName string
	opened   []string
	isOpen   bool
	flushes  int
	closes   int
	removed  []string

	buf       strings.Builder
	committed string

	failOpen  error
	failWrite error
	failFlush error
}

var errFake = errors.New("fake failure")

func (f *fakeTransport) Open(name string) error {
	if f.failOpen != nil {
		return f.failOpen
	}
	f.buf.Reset()
	f.lastName = name
	f.opened = append(f.opened, name)
	f.isOpen = true
	return nil
}

func (f *fakeTransport) WriteLine(line string) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	if !f.isOpen {
		return ErrTransportClosed
	}
	f.buf.WriteString(line + "\n")
	return nil
}

func (f *fakeTransport) Flush() error {
	if f.failFlush != nil {
		return f.failFlush
	}
	f.flushes++
	f.committed = f.buf.String()
	return nil
}

func (f *fakeTransport) Close() error {
	f.closes++
	f.isOpen = false
	return nil
}

func (f *fakeTransport) Remove(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

// recordingBatches keeps every batch it receives.
type recordingBatches struct {
	batches [][]string
	err     error
}

func (r *recordingBatches) WriteBatch(lines []string) error {
	r.batches = append(r.batches, append([]string(nil), lines...))
	return r.err
}

// recordingLines keeps every line it receives.
type recordingLines struct {
	lines []string
}

func (r *recordingLines) WriteLine(line string) error {
	r.lines = append(r.lines, line)
	return nil
}
