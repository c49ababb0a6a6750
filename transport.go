package linekeeper

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrTransportClosed is returned when writing to a [Transport] with no open destination.
var ErrTransportClosed = errors.New("transport is not open")

// A Transport is the byte destination beneath a [SegmentSink].
// Open truncates any previous content stored under name.
type Transport interface {
	Open(name string) error
	WriteLine(line string) error
	Flush() error
	Close() error
}

// A Remover is a [Transport] that can delete a finished segment.
type Remover interface {
	Remove(name string) error
}

// A Discoverer is a [Transport] that can list existing segments matching a glob pattern,
// oldest first.
type Discoverer interface {
	Discover(pattern string) ([]string, error)
}

// FileTransport writes segments to files through a buffered writer.
type FileTransport struct {
	bufferSize int
	makeDirs   bool

	f *os.File
	w *bufio.Writer
}

var (
	_ Transport  = (*FileTransport)(nil)
	_ Remover    = (*FileTransport)(nil)
	_ Discoverer = (*FileTransport)(nil)
)

// NewFileTransport returns a [FileTransport] buffering up to bufferSize bytes.
// If makeDirs is set, missing parent directories are created on Open.
func NewFileTransport(bufferSize int, makeDirs bool) *FileTransport {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &FileTransport{bufferSize: bufferSize, makeDirs: makeDirs}
}

// Open closes the current file, if any, and creates or truncates the file called name.
func (t *FileTransport) Open(name string) error {
	if err := t.Close(); err != nil {
		return err
	}
	if t.makeDirs {
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			return fmt.Errorf("failed to create folder for %s, caused by %w", name, err)
		}
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	t.f = f
	t.w = bufio.NewWriterSize(f, t.bufferSize)
	return nil
}

// WriteLine buffers line followed by a newline.
func (t *FileTransport) WriteLine(line string) error {
	if t.w == nil {
		return ErrTransportClosed
	}
	if _, err := t.w.WriteString(line); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Flush writes buffered lines to the file.
func (t *FileTransport) Flush() error {
	if t.w == nil {
		return ErrTransportClosed
	}
	return t.w.Flush()
}

// Close flushes and closes the current file. Closing a closed transport is a no-op.
func (t *FileTransport) Close() error {
	if t.f == nil {
		return nil
	}
	flushErr := t.w.Flush()
	closeErr := t.f.Close()
	t.f, t.w = nil, nil
	return errors.Join(flushErr, closeErr)
}

// Name returns the path of the open file, or "" if none is open.
func (t *FileTransport) Name() string {
	if t.f == nil {
		return ""
	}
	return t.f.Name()
}

// Remove deletes the segment file called name.
func (t *FileTransport) Remove(name string) error {
	return os.Remove(name)
}

// Discover returns the files matching pattern, ordered by modification time.
func (t *FileTransport) Discover(pattern string) ([]string, error) {
	archives, err := getArchives(pattern)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, archives.Length())
	for archives.Length() > 0 {
		info, err := archives.Dequeue()
		if err != nil {
			return nil, fmt.Errorf("failed to list archives, caused by %w", err)
		}
		names = append(names, info.filePath)
	}
	return names, nil
}
