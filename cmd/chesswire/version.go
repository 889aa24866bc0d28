package main

import (
	"runtime/debug"
	"time"
)

// buildVersion reads the vcs stamp the Go toolchain embeds at build time.
// Builds outside version control report "dev" and the current date.
func buildVersion() (commit, date string) {
	commit = "dev"
	date = time.Now().Format("2006-01-02")
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				date = t.Format("2006-01-02")
			}
		}
	}
	return commit, date
}
