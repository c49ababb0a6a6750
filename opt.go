package linekeeper

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trviph/linekeeper/macro"
)

// An Opt is a function that mutates a [Keeper]'s attributes.
// An Opt should return a mutated Keeper or return an error if it fails to mutate the Keeper.
// An Opt should be used together with [NewKeeper].
type Opt func(*Keeper) (*Keeper, error)

// The folder where segment files are created.
// The folder must exist. It is ignored when a custom transport is set with [WithTransport].
// The default value is [os.TempDir].
func WithFolder(name string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if len(name) > 0 {
			k.folder = name
		}
		return k, nil
	}
}

// The name of the Keeper, available to templates as %NAME%.
// It will be set to the default value if the name is empty.
// The default value is linekeeper-<the executable name>.
func WithName(name string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if len(name) > 0 {
			k.name = name
		}
		return k, nil
	}
}

// The extension of segment files, available to templates as %EXT%.
// It should include a dot prefix and can be empty.
// The default value is ".log".
func WithExtension(extension string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.extension = extension
		return k, nil
	}
}

// The template used to name segments, relative to the folder.
// Besides %NAME% and %EXT%, every macro of [NameGenerator] is available.
// A template ending inside an unterminated macro is rejected.
// The default value is [DefaultTemplate].
func WithTemplate(template string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if len(template) == 0 {
			return nil, errors.New("template must not be empty")
		}
		if err := macro.Validate(template); err != nil {
			return nil, err
		}
		k.template = template
		return k, nil
	}
}

// Number of lines written to each segment.
// Keeper writes a segment as soon as this many lines are pending.
// Zero or one writes every line to its own segment.
// The default value is 1000.
func WithThreshold(lines int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if lines < 0 {
			return nil, fmt.Errorf("threshold must not be negative, got %d", lines)
		}
		k.threshold = lines
		return k, nil
	}
}

// Initial value of the %NUM% and %COUNTER% macros.
// It only applies to a newly created Keeper, a reconfigured Keeper carries on counting.
// The default value is 0.
func WithCounter(counter uint64) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.counter = counter
		return k, nil
	}
}

// What happens to a segment's transport once it is committed, see [CommitPolicy].
// The default value is [CommitClose].
func WithCommitPolicy(policy CommitPolicy) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if policy != CommitClose && policy != CommitFlush {
			return nil, fmt.Errorf("unknown commit policy %v", policy)
		}
		k.policy = policy
		return k, nil
	}
}

// Maximum number of segments to keep.
// Existing segments matching the template are discovered at start,
// and the oldest ones are removed whenever a commit exceeds this value.
// Set this value to zero or negative will disable this feature.
// The default value is 0.
func WithMaxSegments(n int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.maxSegments = n
		return k, nil
	}
}

// Flush pending lines on a schedule, so that a quiet stream does not hold a partial batch forever.
// The spec uses the standard five field cron format, see [github.com/robfig/cron/v3].
// An empty spec disables the schedule.
// The default value is "".
func WithCron(spec string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.cronFormat = spec
		return k, nil
	}
}

// Size in bytes of the write buffer of segment files.
// The default value is [DefaultBufferSize].
func WithBufferSize(size int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if size <= 0 {
			return nil, fmt.Errorf("buffer size must be positive, got %d", size)
		}
		k.bufferSize = size
		return k, nil
	}
}

// Logger for segment and schedule events.
// The default value discards everything.
func WithLogger(logger zerolog.Logger) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.logger = logger
		return k, nil
	}
}

// Clock used by the date macros.
// The default value is [time.Now].
func WithClock(now func() time.Time) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if now == nil {
			return nil, errors.New("clock must not be nil")
		}
		k.now = now
		return k, nil
	}
}

// Write segments to transport instead of files.
// Rendered names are passed to the transport as is, without the folder.
// [WithMaxSegments] requires the transport to implement [Remover].
func WithTransport(transport Transport) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.transport = transport
		return k, nil
	}
}

// Decorate the segment sink, for example to instrument it.
func WithSinkWrapper(wrap func(BatchSink) BatchSink) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.wrap = wrap
		return k, nil
	}
}
