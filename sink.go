package linekeeper

// A LineSink consumes single lines.
type LineSink interface {
	WriteLine(line string) error
}

// A BatchSink groups lines between Begin and Commit.
// WriteLine is only valid after Begin and before Commit.
type BatchSink interface {
	LineSink
	Begin() error
	Commit() error
}

// A BatchWriter consumes ordered groups of lines.
type BatchWriter interface {
	WriteBatch(lines []string) error
}
