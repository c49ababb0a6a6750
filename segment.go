package linekeeper

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrSegmentNotOpen is returned by [SegmentSink.WriteLine] and [SegmentSink.Commit]
// when no segment has been begun.
var ErrSegmentNotOpen = errors.New("segment is not open")

// A CommitPolicy decides what [SegmentSink.Commit] does with the transport.
type CommitPolicy int

const (
	// CommitClose flushes and closes the transport, the next Begin opens a fresh one.
	CommitClose CommitPolicy = iota
	// CommitFlush only flushes, the transport stays open until the next Begin.
	CommitFlush
)

func (p CommitPolicy) String() string {
	switch p {
	case CommitClose:
		return "close"
	case CommitFlush:
		return "flush"
	default:
		return fmt.Sprintf("CommitPolicy(%d)", int(p))
	}
}

// ParseCommitPolicy parses "close" or "flush".
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch s {
	case "close":
		return CommitClose, nil
	case "flush":
		return CommitFlush, nil
	default:
		return 0, fmt.Errorf("unknown commit policy %q", s)
	}
}

type segmentState int

const (
	segmentUnopened segmentState = iota
	segmentOpen
	segmentCommitted
)

// A SegmentSink writes every batch to its own destination.
// Begin opens a destination named by a [NameGenerator], Commit finishes it.
// A SegmentSink exclusively owns its transport and is not safe for concurrent use.
type SegmentSink struct {
	names     *NameGenerator
	transport Transport
	policy    CommitPolicy
	logger    zerolog.Logger
	onCommit  func(name string) error

	state segmentState
	held  bool
	name  string
}

var _ BatchSink = (*SegmentSink)(nil)

// NewSegmentSink returns a [SegmentSink] naming segments with names and writing them to transport.
func NewSegmentSink(names *NameGenerator, transport Transport, policy CommitPolicy) *SegmentSink {
	return &SegmentSink{
		names:     names,
		transport: transport,
		policy:    policy,
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used to trace segment transitions.
func (s *SegmentSink) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// OnCommit registers fn to run with the segment name after every successful commit.
func (s *SegmentSink) OnCommit(fn func(name string) error) {
	s.onCommit = fn
}

// Begin generates a new name and opens it on the transport, truncating prior content.
// A segment left open by a failed batch is abandoned.
func (s *SegmentSink) Begin() error {
	if s.state == segmentOpen {
		s.logger.Warn().Str("segment", s.name).Msg("abandoning incomplete segment")
	}
	if s.held {
		s.held = false
		if err := s.transport.Close(); err != nil {
			return fmt.Errorf("failed to close segment %s, caused by %w", s.name, err)
		}
	}

	name := s.names.Generate()
	if err := s.transport.Open(name); err != nil {
		s.state = segmentUnopened
		return fmt.Errorf("failed to open segment %s, caused by %w", name, err)
	}
	s.state, s.held, s.name = segmentOpen, true, name
	s.logger.Debug().Str("segment", name).Msg("segment opened")
	return nil
}

// WriteLine appends line and a line terminator to the open segment.
func (s *SegmentSink) WriteLine(line string) error {
	if s.state != segmentOpen {
		return ErrSegmentNotOpen
	}
	if err := s.transport.WriteLine(line); err != nil {
		return fmt.Errorf("failed to write to segment %s, caused by %w", s.name, err)
	}
	return nil
}

// Commit flushes the open segment and, with [CommitClose], closes it.
func (s *SegmentSink) Commit() error {
	if s.state != segmentOpen {
		return ErrSegmentNotOpen
	}
	if err := s.transport.Flush(); err != nil {
		return fmt.Errorf("failed to flush segment %s, caused by %w", s.name, err)
	}
	if s.policy == CommitClose {
		s.held = false
		if err := s.transport.Close(); err != nil {
			return fmt.Errorf("failed to close segment %s, caused by %w", s.name, err)
		}
	}
	s.state = segmentCommitted
	s.logger.Debug().Str("segment", s.name).Stringer("policy", s.policy).Msg("segment committed")

	if s.onCommit != nil {
		if err := s.onCommit(s.name); err != nil {
			return fmt.Errorf("failed to finalize segment %s, caused by %w", s.name, err)
		}
	}
	return nil
}

// Name returns the name of the current or last committed segment.
func (s *SegmentSink) Name() string {
	return s.name
}

// Close releases a transport still held open by [CommitFlush] or by an incomplete batch.
func (s *SegmentSink) Close() error {
	if !s.held {
		return nil
	}
	s.held = false
	s.state = segmentUnopened
	return s.transport.Close()
}
