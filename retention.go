package linekeeper

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/trviph/collection"
)

// retention keeps at most max committed segments, removing the oldest first.
type retention struct {
	max     int
	remover Remover
	logger  zerolog.Logger

	archives *collection.List[string]
	known    map[string]struct{}
}

// Create a retention for transport, seeded with the existing segments matching pattern.
func newRetention(limit int, transport Transport, pattern string, logger zerolog.Logger) (*retention, error) {
	remover, ok := transport.(Remover)
	if !ok {
		return nil, fmt.Errorf("transport %T cannot remove segments", transport)
	}
	r := &retention{
		max:      limit,
		remover:  remover,
		logger:   logger,
		archives: collection.NewList[string](),
		known:    make(map[string]struct{}),
	}

	discoverer, ok := transport.(Discoverer)
	if !ok {
		return r, nil
	}
	existing, err := discoverer.Discover(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover segments, caused by %w", err)
	}
	for _, name := range existing {
		r.archives.Append(name)
		r.known[name] = struct{}{}
	}
	return r, nil
}

// Track a committed segment and remove the oldest ones beyond the limit.
func (r *retention) retain(name string) error {
	if _, ok := r.known[name]; ok {
		if err := r.forget(name); err != nil {
			return err
		}
	}
	r.archives.Append(name)
	r.known[name] = struct{}{}

	for r.archives.Length() > r.max {
		oldest, err := r.archives.Dequeue()
		if err != nil {
			return fmt.Errorf("failed to get oldest segment name, caused by %w", err)
		}
		delete(r.known, oldest)
		if err := r.remover.Remove(oldest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove oldest segment, caused by %w", err)
		}
		r.logger.Debug().Str("segment", oldest).Msg("segment removed")
	}
	return nil
}

// Drop name from the queue, keeping the order of the others.
// A segment that is written again moves to the back of the queue.
func (r *retention) forget(name string) error {
	for n := r.archives.Length(); n > 0; n-- {
		archive, err := r.archives.Dequeue()
		if err != nil {
			return fmt.Errorf("failed to reorder segments, caused by %w", err)
		}
		if archive != name {
			r.archives.Append(archive)
		}
	}
	delete(r.known, name)
	return nil
}

// Get the number of tracked segments.
func (r *retention) count() int {
	return r.archives.Length()
}
