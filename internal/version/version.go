package version

// Version is the current issuesync release. The release workflow overrides
// Commit through -ldflags.
const Version = "0.3.0"

var Commit = "dev"

// FullVersion returns the version with the v prefix
func FullVersion() string {
	return "v" + Version
}
