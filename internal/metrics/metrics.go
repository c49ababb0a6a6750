// Package metrics instruments segment sinks with Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trviph/linekeeper"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	segmentsOpened    prometheus.Counter
	segmentsCommitted prometheus.Counter
	linesWritten      prometheus.Counter
	segmentErrors     *prometheus.CounterVec
	batchLines        prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		segmentsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linekeeper_segments_opened_total",
			Help: "Total segments begun",
		}),
		segmentsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linekeeper_segments_committed_total",
			Help: "Total segments committed",
		}),
		linesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linekeeper_lines_written_total",
			Help: "Total lines written to segments",
		}),
		segmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linekeeper_segment_errors_total",
			Help: "Total transport failures by step (begin, write, commit)",
		}, []string{"step"}),
		batchLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linekeeper_batch_lines",
			Help:    "Distribution of lines per committed segment",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.segmentsOpened, m.segmentsCommitted, m.linesWritten, m.segmentErrors, m.batchLines} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Wrap returns sink counting every segment and line going through it.
// It fits [linekeeper.WithSinkWrapper].
func (m *Metrics) Wrap(sink linekeeper.BatchSink) linekeeper.BatchSink {
	return &instrumented{BatchSink: sink, m: m}
}

type instrumented struct {
	linekeeper.BatchSink
	m     *Metrics
	lines int
}

func (s *instrumented) Begin() error {
	if err := s.BatchSink.Begin(); err != nil {
		s.m.segmentErrors.WithLabelValues("begin").Inc()
		return err
	}
	s.lines = 0
	s.m.segmentsOpened.Inc()
	return nil
}

func (s *instrumented) WriteLine(line string) error {
	if err := s.BatchSink.WriteLine(line); err != nil {
		s.m.segmentErrors.WithLabelValues("write").Inc()
		return err
	}
	s.lines++
	s.m.linesWritten.Inc()
	return nil
}

func (s *instrumented) Commit() error {
	if err := s.BatchSink.Commit(); err != nil {
		s.m.segmentErrors.WithLabelValues("commit").Inc()
		return err
	}
	s.m.segmentsCommitted.Inc()
	s.m.batchLines.Observe(float64(s.lines))
	return nil
}
