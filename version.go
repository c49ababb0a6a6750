package linekeeper

const version = "1.2.0"

// Version returns the semantic version of this package.
func Version() string {
	return version
}
