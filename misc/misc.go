// Package misc keeps program identity helpers used across the tool.
package misc

import "runtime/debug"

const appName = "clipnote"

// overwritten by the build with -ldflags "-X clipnote/misc.version=..."
var version = "0.0.0-dev"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns the VCS revision recorded in build info, shortened the
// way git does it.
func GetGitHash() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var hash, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			hash = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				modified = "*"
			}
		}
	}
	if hash == "" {
		return "unknown"
	}
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return hash + modified
}
