// Package misc keeps build information.
package misc

import (
	"runtime/debug"
	"sync"
)

// Set at build time with -ldflags "-X ucc/misc.version=... -X ucc/misc.gitHash=...".
var (
	appName = "ucc"
	version = "dev"
	gitHash = ""
)

var buildInfo = sync.OnceValue(func() (vcs string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			vcs = s.Value
		}
	}
	return vcs
})

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit the binary was built from, falls back to
// information embedded by the go tool.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if h := buildInfo(); len(h) > 0 {
		return h
	}
	return "unknown"
}
