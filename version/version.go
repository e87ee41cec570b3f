package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Dirty     bool   `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Get returns the build information, filling gaps in the ldflags values
// from the embedded module build info.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// String returns a one-line version string such as "1.2.0 (abc1234)".
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s = fmt.Sprintf("%s (%s", s, i.GitCommit)
		if i.Dirty {
			s += "-dirty"
		}
		s += ")"
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return s
}
