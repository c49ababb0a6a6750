package linekeeper

// Buffer sizes in bytes.
const (
	// Kibibyte
	Kb int = 1 << 10
	// Mebibyte
	Mb int = 1 << 20

	// DefaultBufferSize is the write buffer of segment files unless set with [WithBufferSize].
	DefaultBufferSize = 64 * Kb
)
