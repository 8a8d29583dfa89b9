// Package build reports what weft was built from.
package build

import "runtime/debug"

// Version is stamped at release time with
// -ldflags "-X go.trai.ch/weft/internal/build.Version=v1.2.3".
var Version = "dev"

// revisionLen is how much of the commit hash Info shows.
const revisionLen = 12

// Info returns Version followed by the VCS revision the toolchain embedded,
// if any. A build from a modified tree is marked dirty.
func Info() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	return describe(Version, bi.Settings)
}

func describe(version string, settings []debug.BuildSetting) string {
	var revision string
	var dirty bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	if len(revision) > revisionLen {
		revision = revision[:revisionLen]
	}
	if dirty {
		revision += "-dirty"
	}
	return version + " (" + revision + ")"
}
