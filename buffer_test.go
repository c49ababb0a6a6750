package linekeeper

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// stringSegments is a batch sink that keeps only the content of the current segment.
type stringSegments struct {
	current bytes.Buffer
	begun   int
}

func (s *stringSegments) Begin() error {
	s.current.Reset()
	s.begun++
	return nil
}

func (s *stringSegments) WriteLine(line string) error {
	s.current.WriteString(line + "\n")
	return nil
}

func (s *stringSegments) Commit() error { return nil }

func TestLineBufferOfOne(t *testing.T) {
	for _, threshold := range []int{0, 1} {
		t.Run(fmt.Sprint(threshold), func(t *testing.T) {
			segments := new(stringSegments)
			lb := NewLineBuffer(threshold, NewSegmentWriter(segments))
			if err := lb.Write("This is a line"); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			if got := segments.current.String(); got != "This is a line\n" {
				t.Errorf("segment = %q", got)
			}
			if lb.Pending() != 0 {
				t.Errorf("expected nothing pending, got %d", lb.Pending())
			}
		})
	}
}

func TestLineBufferOfTwo(t *testing.T) {
	segments := new(stringSegments)
	lb := NewLineBuffer(2, NewSegmentWriter(segments))

	steps := []struct {
		line string
		want string
	}{
		{line: "line 1", want: ""},
		{line: "line 2", want: "line 1\nline 2\n"},
		{line: "line 3", want: "line 1\nline 2\n"},
		{line: "line 4", want: "line 3\nline 4\n"},
	}
	for _, step := range steps {
		if err := lb.Write(step.line); err != nil {
			t.Fatalf("Write(%q) failed: %v", step.line, err)
		}
		if got := segments.current.String(); got != step.want {
			t.Fatalf("after Write(%q) segment = %q, want %q", step.line, got, step.want)
		}
	}
	if segments.begun != 2 {
		t.Errorf("expected 2 segments, got %d", segments.begun)
	}
}

func TestLineBufferThreshold(t *testing.T) {
	const n = 5
	sink := new(recordingBatches)
	lb := NewLineBuffer(n, sink)

	var want []string
	for i := 0; i < n; i++ {
		line := fmt.Sprintf("m v=%di", i)
		want = append(want, line)
		_ = lb.Write(line)
	}
	if !reflect.DeepEqual(sink.batches, [][]string{want}) {
		t.Fatalf("after %d writes got batches %v", n, sink.batches)
	}
	if lb.Pending() != 0 {
		t.Errorf("expected empty buffer, got %d pending", lb.Pending())
	}

	_ = lb.Write("extra")
	if len(sink.batches) != 1 || lb.Pending() != 1 {
		t.Errorf("after %d writes got %d batches and %d pending", n+1, len(sink.batches), lb.Pending())
	}
}

func TestLineBufferEmitAndClose(t *testing.T) {
	sink := new(recordingBatches)
	lb := NewLineBuffer(10, sink)

	if err := lb.Emit(); err != nil || len(sink.batches) != 0 {
		t.Fatalf("Emit() on an empty buffer must not reach the sink, got %v %v", sink.batches, err)
	}
	_ = lb.Write("a")
	_ = lb.Write("b")
	if err := lb.Emit(); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}
	_ = lb.Write("c")
	if err := lb.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	want := [][]string{{"a", "b"}, {"c"}}
	if !reflect.DeepEqual(sink.batches, want) {
		t.Errorf("batches = %v, want %v", sink.batches, want)
	}
}

func TestLineBufferSinkFailureClearsBatch(t *testing.T) {
	sink := &recordingBatches{err: errFake}
	lb := NewLineBuffer(2, sink)
	_ = lb.Write("a")
	if err := lb.Write("b"); !errors.Is(err, errFake) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if lb.Pending() != 0 {
		t.Errorf("expected failed batch to be dropped, got %d pending", lb.Pending())
	}
}

func TestLineBufferToLineSink(t *testing.T) {
	sink := new(recordingLines)
	lb := NewLineBufferTo(3, sink)
	for _, line := range []string{"1", "2", "3", "4"} {
		_ = lb.Write(line)
	}
	if !reflect.DeepEqual(sink.lines, []string{"1", "2", "3"}) {
		t.Fatalf("lines = %v", sink.lines)
	}
	_ = lb.Close()
	if !reflect.DeepEqual(sink.lines, []string{"1", "2", "3", "4"}) {
		t.Errorf("lines after Close = %v", sink.lines)
	}
}

func TestSafeLineBuffer(t *testing.T) {
	segments := new(stringSegments)
	lb := NewSafeLineBuffer(NewLineBuffer(2, NewSegmentWriter(segments)))
	_ = lb.Write("line 1")
	if got := segments.current.String(); got != "" {
		t.Fatalf("segment = %q, want empty", got)
	}
	_ = lb.WriteLine("line 2")
	if got := segments.current.String(); got != "line 1\nline 2\n" {
		t.Fatalf("segment = %q", got)
	}
	_ = lb.Write("line 3")
	if lb.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", lb.Pending())
	}
	_ = lb.Close()
	if got := segments.current.String(); got != "line 3\n" {
		t.Errorf("segment after Close = %q", got)
	}
}

func TestSafeLineBufferConcurrent(t *testing.T) {
	const (
		workers   = 8
		perWorker = 500
		threshold = 7
	)
	sink := new(recordingBatches)
	lb := NewSafeLineBuffer(NewLineBuffer(threshold, sink))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = lb.Write(fmt.Sprintf("%d-%d", id, i))
			}
		}(w)
	}
	wg.Wait()
	_ = lb.Close()

	total := 0
	seen := make(map[string]bool)
	for i, batch := range sink.batches {
		if i < len(sink.batches)-1 && len(batch) != threshold {
			t.Errorf("batch %d has %d lines, want %d", i, len(batch), threshold)
		}
		for _, line := range batch {
			if seen[line] {
				t.Errorf("line %q written twice", line)
			}
			seen[line] = true
		}
		total += len(batch)
	}
	if total != workers*perWorker {
		t.Errorf("got %d lines, want %d", total, workers*perWorker)
	}
}
