package linekeeper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultTemplate names segments after the Keeper, the UTC time of the batch and a six digit counter.
const DefaultTemplate = "%NAME%-%YEAR%%MONTH%%DAY%T%HOUR%%MINUTE%%SECOND%-%NUM:6%%EXT%"

// ErrKeeperClosed is returned when using a [Keeper] after [Keeper.Close].
var ErrKeeperClosed = errors.New("keeper is closed")

// config holds everything an [Opt] can change.
// It is copied before options are re-applied so a failed reconfiguration can be rolled back.
type config struct {
	// See [WithFolder] for documentation.
	folder string
	// See [WithName] for documentation.
	name string
	// See [WithExtension] for documentation.
	extension string
	// See [WithTemplate] for documentation.
	template string
	// See [WithThreshold] for documentation.
	threshold int
	// See [WithCounter] for documentation.
	counter uint64
	// See [WithCommitPolicy] for documentation.
	policy CommitPolicy
	// See [WithMaxSegments] for documentation.
	maxSegments int
	// See [WithCron] for documentation.
	cronFormat string
	// See [WithBufferSize] for documentation.
	bufferSize int
	// See [WithLogger] for documentation.
	logger zerolog.Logger
	// See [WithClock] for documentation.
	now func() time.Time
	// See [WithTransport] for documentation.
	transport Transport
	// See [WithSinkWrapper] for documentation.
	wrap func(BatchSink) BatchSink
}

// A [Keeper] buffers lines and writes every full batch to a new segment.
// Use [NewKeeper] to create a new Keeper.
type Keeper struct {
	config

	c *cron.Cron

	mu       sync.Mutex
	closed   bool
	partial  []byte
	names    *NameGenerator
	segments *SegmentSink
	buffer   *SafeLineBuffer

	retention *retention
}

var (
	_ io.WriteCloser = (*Keeper)(nil)
	_ LineSink       = (*Keeper)(nil)
)

// Create a new [Keeper] with the provided options.
// See [Opt] for all available options.
//
// Keepers are registered by name: creating a Keeper with the name of a Keeper that is still open
// returns that Keeper with the given options applied on top of its current configuration.
// Pending lines are flushed before the new configuration takes effect and the segment counter carries on.
// If the new configuration cannot be started, the Keeper keeps running with its previous one.
//
// Example usage:
//
//	keeper, err := linekeeper.NewKeeper(
//		linekeeper.WithName("cpu"),
//		linekeeper.WithFolder("/var/spool/metrics"),
//		linekeeper.WithThreshold(5000),
//	)
func NewKeeper(opts ...Opt) (*Keeper, error) {
	defaultOpts := []Opt{
		WithFolder(os.TempDir()),
		WithName(defaultKeeperName()),
		WithExtension(".log"),
		WithTemplate(DefaultTemplate),
		WithThreshold(1000),
		WithCommitPolicy(CommitClose),
		WithMaxSegments(0),
		WithCron(""),
		WithBufferSize(DefaultBufferSize),
	}
	finalOpts := append(defaultOpts, opts...)

	keeper := &Keeper{config: config{logger: zerolog.Nop(), now: time.Now}}
	if err := keeper.applyOpts(finalOpts...); err != nil {
		return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
	}

	for {
		// Lock before publishing so nobody can use the Keeper before its pipeline exists.
		keeper.mu.Lock()
		registered, isNew := register(keeper.name, keeper)
		if isNew {
			err := keeper.start()
			if err != nil {
				keeper.closed = true
				unregister(keeper.name, keeper)
			}
			keeper.mu.Unlock()
			if err != nil {
				return nil, fmt.Errorf("failed to start keeper, caused by %w", err)
			}
			return keeper, nil
		}
		keeper.mu.Unlock()

		registered.mu.Lock()
		if registered.closed {
			// Closed between the lookup and the lock, it is no longer registered.
			registered.mu.Unlock()
			continue
		}
		err := registered.reconfigure(opts...)
		registered.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to update keeper, caused by %w", err)
		}
		return registered, nil
	}
}

// Apply opts on top of the current configuration and restart the pipeline.
// On failure the previous configuration and pipeline are kept.
func (k *Keeper) reconfigure(opts ...Opt) error {
	prev := k.config
	if err := k.applyOpts(opts...); err != nil {
		k.config = prev
		return err
	}
	p, err := k.build()
	if err != nil {
		k.config = prev
		return err
	}
	return k.swap(p)
}

func (k *Keeper) applyOpts(opts ...Opt) error {
	var err error
	for _, opt := range opts {
		k, err = opt(k)
		if err != nil {
			return fmt.Errorf("failed to apply option, caused by %w", err)
		}
	}
	return nil
}

// pipeline is a built but not yet running set of segment components.
type pipeline struct {
	target   string
	names    *NameGenerator
	segments *SegmentSink
	sink     BatchSink
	keep     *retention
}

// Build the pipeline and swap it in for the running one.
func (k *Keeper) start() error {
	p, err := k.build()
	if err != nil {
		return err
	}
	return k.swap(p)
}

// Build a pipeline from the current configuration without touching the running one.
func (k *Keeper) build() (*pipeline, error) {
	if k.closed {
		return nil, ErrKeeperClosed
	}
	if len(k.cronFormat) > 0 {
		if _, err := cron.ParseStandard(k.cronFormat); err != nil {
			return nil, fmt.Errorf("failed to setup cron, caused by %w", err)
		}
	}

	transport, target := k.transport, k.template
	if transport == nil {
		if err := checkFolder(k.folder); err != nil {
			return nil, err
		}
		transport = NewFileTransport(k.bufferSize, true)
		target = filepath.Join(k.folder, k.template)
	}

	// The counter is settled by swap once the running pipeline has drained.
	names := NewNameGenerator(target, k.counter, k.now)
	names.Register("NAME", func(string) string { return k.name })
	names.Register("EXT", func(string) string { return k.extension })

	segments := NewSegmentSink(names, transport, k.policy)
	segments.SetLogger(k.logger)
	var keep *retention
	if k.maxSegments > 0 {
		var err error
		if keep, err = newRetention(k.maxSegments, transport, names.Glob("NAME", "EXT"), k.logger); err != nil {
			return nil, err
		}
		segments.OnCommit(keep.retain)
	}

	var sink BatchSink = segments
	if k.wrap != nil {
		sink = k.wrap(sink)
	}
	return &pipeline{target: target, names: names, segments: segments, sink: sink, keep: keep}, nil
}

// Drain the running pipeline into its own segments, then run p from the next counter value.
// p is installed even if draining fails.
func (k *Keeper) swap(p *pipeline) error {
	var stopErr error
	if k.names != nil {
		if k.segments != nil {
			// Segments committed while draining count toward the new limit.
			var onCommit func(string) error
			if p.keep != nil {
				onCommit = p.keep.retain
			}
			k.segments.OnCommit(onCommit)
		}
		stopErr = k.stop()
		p.names.seek(k.names.Counter())
	}
	k.names, k.segments, k.retention = p.names, p.segments, p.keep
	k.buffer = NewSafeLineBuffer(NewLineBuffer(k.threshold, NewSegmentWriter(p.sink)))
	k.setupCron()
	k.logger.Debug().
		Str("keeper", k.name).
		Str("template", p.target).
		Int("threshold", k.threshold).
		Uint64("counter", p.names.Counter()).
		Msg("keeper started")
	return stopErr
}

// Flush pending lines and release the running pipeline, if any.
func (k *Keeper) stop() error {
	if k.buffer == nil {
		return nil
	}
	emitErr := k.buffer.Close()
	closeErr := k.segments.Close()
	k.buffer, k.segments = nil, nil
	if err := errors.Join(emitErr, closeErr); err != nil {
		return fmt.Errorf("failed to flush keeper, caused by %w", err)
	}
	return nil
}

// The cron spec has already been validated by start.
func (k *Keeper) setupCron() {
	if k.c != nil {
		k.c.Stop()
		k.c = nil
	}
	if len(k.cronFormat) == 0 {
		return
	}
	k.c = cron.New()
	if _, err := k.c.AddFunc(k.cronFormat, k.scheduledEmit); err != nil {
		k.logger.Error().Err(err).Str("cron", k.cronFormat).Msg("failed to schedule flush")
		return
	}
	k.c.Start()
}

func (k *Keeper) scheduledEmit() {
	if err := k.Emit(); err != nil && !errors.Is(err, ErrKeeperClosed) {
		k.logger.Error().Err(err).Str("keeper", k.name).Msg("scheduled flush failed")
	}
}

// Write splits msg into lines and buffers them.
// A trailing line without a newline is held until it is completed or the Keeper is closed.
func (k *Keeper) Write(msg []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.buffer == nil {
		return 0, ErrKeeperClosed
	}

	written := 0
	for written < len(msg) {
		i := bytes.IndexByte(msg[written:], '\n')
		if i < 0 {
			k.partial = append(k.partial, msg[written:]...)
			return len(msg), nil
		}
		line := string(append(k.partial, msg[written:written+i]...))
		k.partial = k.partial[:0]
		written += i + 1
		if err := k.buffer.Write(line); err != nil {
			return written, fmt.Errorf("failed to write line, caused by %w", err)
		}
	}
	return written, nil
}

// WriteLine buffers a single line. The line should not contain a newline.
func (k *Keeper) WriteLine(line string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.buffer == nil {
		return ErrKeeperClosed
	}
	return k.buffer.Write(line)
}

// Emit writes all pending lines to a new segment immediately without waiting for the threshold.
func (k *Keeper) Emit() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.buffer == nil {
		return ErrKeeperClosed
	}
	return k.buffer.Emit()
}

// Pending returns the number of lines waiting for the next segment.
func (k *Keeper) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.buffer == nil {
		return 0
	}
	return k.buffer.Pending()
}

// Segment returns the name of the last segment begun.
func (k *Keeper) Segment() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.segments == nil {
		return ""
	}
	return k.segments.Name()
}

// Name returns the name the Keeper is registered under.
func (k *Keeper) Name() string {
	return k.name
}

// Close flushes pending lines, including an unterminated trailing line, and closes the Keeper.
// Any subsequent writes return [ErrKeeperClosed].
func (k *Keeper) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrKeeperClosed
	}
	k.closed = true
	unregister(k.name, k)
	if k.c != nil {
		k.c.Stop()
		k.c = nil
	}

	var partialErr error
	if len(k.partial) > 0 && k.buffer != nil {
		partialErr = k.buffer.Write(string(k.partial))
		k.partial = nil
	}
	return errors.Join(partialErr, k.stop())
}

func checkFolder(folder string) error {
	stat, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("failed to access folder, caused by %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a folder", folder)
	}
	return nil
}
