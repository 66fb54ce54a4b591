package detect

// Backend is the storage format in effect for a process. It is a closed set:
// JSONBackend or SQLiteBackend. Callers dispatch with a type switch.
type Backend interface {
	// Base is the storage base directory selected by the resolver.
	Base() string
	isBackend()
}

// JSONBackend reads a tree of JSON files under BasePath.
type JSONBackend struct {
	BasePath string
}

// SQLiteBackend reads the embedded database at DBPath. BasePath is kept for
// display and for locating sibling files.
type SQLiteBackend struct {
	BasePath string
	DBPath   string
}

func (b JSONBackend) Base() string   { return b.BasePath }
func (b SQLiteBackend) Base() string { return b.BasePath }

func (JSONBackend) isBackend()   {}
func (SQLiteBackend) isBackend() {}

// Descriptor is a serializable summary of a Backend.
type Descriptor struct {
	Kind     string `json:"kind"`
	BasePath string `json:"basePath"`
	DBPath   string `json:"dbPath,omitempty"`
}

func Describe(b Backend) Descriptor {
	switch v := b.(type) {
	case SQLiteBackend:
		return Descriptor{Kind: "sqlite", BasePath: v.BasePath, DBPath: v.DBPath}
	case JSONBackend:
		return Descriptor{Kind: "json", BasePath: v.BasePath}
	default:
		return Descriptor{Kind: "unknown"}
	}
}
