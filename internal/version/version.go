// Where: cli/internal/version/version.go
// What: Version information retrieval.
// Why: Let operators correlate a CLI binary with the commit that built it.
package version

import "runtime/debug"

const fallback = "dev"

// GetVersion derives the version string from embedded VCS build info:
// the short revision, with a dirty marker when the tree was modified.
// Binaries built outside a checkout report "dev".
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}

	revision := ""
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return fallback
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		return revision + " (dirty)"
	}
	return revision
}
