package calinga

// Version information for calinga.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/calinga.GitCommit=abc1234"
const (
	// Name is the application name.
	Name = "calinga"

	// Description is a short description of the application.
	Description = "Layered translation resolution backed by the Calinga service"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/calinga"
)

// BuildInfo contains build-time information set via ldflags.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit, if known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent to the translation service.
func UserAgent() string {
	return Name + "-go/" + Version
}
