// Package version holds build-time metadata injected via ldflags.
package version

// These variables are set at build time using -ldflags:
//
//	-X 'github.com/janekbaraniewski/ohmydashboard/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/ohmydashboard/internal/version.CommitHash=...'
//	-X 'github.com/janekbaraniewski/ohmydashboard/internal/version.BuildDate=...'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the serializable form reported by `version --json` and /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

func Current() Info {
	return Info{Version: Version, Commit: CommitHash, BuildDate: BuildDate}
}

// String returns a formatted version string.
func String() string {
	return "ohmydashboard " + Version + " (" + CommitHash + ") built " + BuildDate
}
